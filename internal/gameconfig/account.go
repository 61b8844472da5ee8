package gameconfig

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// ErrInvalidAccountData is returned when account bytes are not a GameConfig.
var ErrInvalidAccountData = errors.New("invalid game config account data")

// State is the lifecycle state of the current round.
type State uint8

const (
	StateNotStarted   State = 0
	StateActive       State = 1
	StateRoundEnded   State = 2
	StateGameFinished State = 3
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateActive:
		return "Active"
	case StateRoundEnded:
		return "RoundEnded"
	case StateGameFinished:
		return "GameFinished"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Account is the on-chain GameConfig account.
type Account struct {
	RoundNumber      uint64           `json:"round_number"`
	State            State            `json:"state"`
	CurrentKeyPrice  uint64           `json:"current_key_price"`
	EndTime          int64            `json:"end_time"`
	LastBuyerKey     solana.PublicKey `json:"last_buyer_key"`
	LastBuyerTime    int64            `json:"last_buyer_time"`
	JackpotPool      uint64           `json:"jackpot_pool"`
	DividendPool     uint64           `json:"dividend_pool"`
	NextRoundPool    uint64           `json:"next_round_pool"`
	LeaderboardPool  uint64           `json:"leaderboard_pool"`
	RandomRewardPool uint64           `json:"random_reward_pool"`
	TotalKeyCount    uint64           `json:"total_key_count"`
	TotalShadowCount uint64           `json:"total_shadow_count"`
	Authority        solana.PublicKey `json:"authority"`
	TreasuryUSDTBump uint8            `json:"treasury_usdt_bump"`
	TreasuryHANBump  uint8            `json:"treasury_han_bump"`
	Bump             uint8            `json:"bump"`
	USDTMintKey      solana.PublicKey `json:"usdt_mint_key"`
	HANMintKey       solana.PublicKey `json:"han_mint_key"`
}

// wireAccount is the Borsh layout, field for field.
type wireAccount struct {
	RoundNumber      uint64
	State            uint8
	CurrentKeyPrice  uint64
	EndTime          int64
	LastBuyerKey     solana.PublicKey
	LastBuyerTime    int64
	JackpotPool      uint64
	DividendPool     uint64
	NextRoundPool    uint64
	LeaderboardPool  uint64
	RandomRewardPool uint64
	TotalKeyCount    uint64
	TotalShadowCount uint64
	Authority        solana.PublicKey
	TreasuryUSDTBump uint8
	TreasuryHANBump  uint8
	Bump             uint8
	USDTMintKey      solana.PublicKey
	HANMintKey       solana.PublicKey
}

// Decode parses Anchor account data: an 8-byte discriminator followed by
// the Borsh-encoded GameConfig.
func Decode(data []byte) (Account, error) {
	if len(data) < discriminatorSize {
		return Account{}, fmt.Errorf("%w: %d bytes is shorter than the discriminator", ErrInvalidAccountData, len(data))
	}
	if !bytes.Equal(data[:discriminatorSize], accountDiscriminator[:]) {
		return Account{}, fmt.Errorf("%w: discriminator mismatch", ErrInvalidAccountData)
	}

	var w wireAccount
	if err := bin.NewBorshDecoder(data[discriminatorSize:]).Decode(&w); err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}

	return Account{
		RoundNumber:      w.RoundNumber,
		State:            State(w.State),
		CurrentKeyPrice:  w.CurrentKeyPrice,
		EndTime:          w.EndTime,
		LastBuyerKey:     w.LastBuyerKey,
		LastBuyerTime:    w.LastBuyerTime,
		JackpotPool:      w.JackpotPool,
		DividendPool:     w.DividendPool,
		NextRoundPool:    w.NextRoundPool,
		LeaderboardPool:  w.LeaderboardPool,
		RandomRewardPool: w.RandomRewardPool,
		TotalKeyCount:    w.TotalKeyCount,
		TotalShadowCount: w.TotalShadowCount,
		Authority:        w.Authority,
		TreasuryUSDTBump: w.TreasuryUSDTBump,
		TreasuryHANBump:  w.TreasuryHANBump,
		Bump:             w.Bump,
		USDTMintKey:      w.USDTMintKey,
		HANMintKey:       w.HANMintKey,
	}, nil
}

// Encode serialises a into Anchor account data.
func (a Account) Encode() ([]byte, error) {
	w := wireAccount{
		RoundNumber:      a.RoundNumber,
		State:            uint8(a.State),
		CurrentKeyPrice:  a.CurrentKeyPrice,
		EndTime:          a.EndTime,
		LastBuyerKey:     a.LastBuyerKey,
		LastBuyerTime:    a.LastBuyerTime,
		JackpotPool:      a.JackpotPool,
		DividendPool:     a.DividendPool,
		NextRoundPool:    a.NextRoundPool,
		LeaderboardPool:  a.LeaderboardPool,
		RandomRewardPool: a.RandomRewardPool,
		TotalKeyCount:    a.TotalKeyCount,
		TotalShadowCount: a.TotalShadowCount,
		Authority:        a.Authority,
		TreasuryUSDTBump: a.TreasuryUSDTBump,
		TreasuryHANBump:  a.TreasuryHANBump,
		Bump:             a.Bump,
		USDTMintKey:      a.USDTMintKey,
		HANMintKey:       a.HANMintKey,
	}

	var buf bytes.Buffer
	buf.Write(accountDiscriminator[:])
	if err := bin.NewBorshEncoder(&buf).Encode(&w); err != nil {
		return nil, fmt.Errorf("encode game config: %w", err)
	}
	return buf.Bytes(), nil
}
