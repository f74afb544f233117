package persist

import (
	"time"

	bolt "github.com/rivine/bbolt"

	"github.com/threefoldtech/piclaim/crypto"
	"github.com/threefoldtech/piclaim/pkg/encoding/rivbin"
	"github.com/threefoldtech/piclaim/types"
)

// WalletStore durably records enrolled wallets so the supervisor can
// rehydrate a registry.WalletRegistry across restarts (SPEC_FULL.md §9).
// The default, used unless a database path is configured, is an
// in-memory no-op: losing enrollment across restarts is an accepted
// tradeoff for a deployment that never configured durable storage.
type WalletStore interface {
	SaveWallet(w types.Wallet) error
	DeleteWallet(id types.WalletID) error
	LoadWallets() ([]types.Wallet, error)
	Close() error
}

// BalanceStore durably records tracked claimable balances so the
// supervisor can rehydrate a registry.BalanceRegistry across restarts.
type BalanceStore interface {
	SaveBalance(b types.ClaimableBalance) error
	DeleteBalance(id types.BalanceID) error
	LoadBalances() ([]types.ClaimableBalance, error)
	Close() error
}

// MemoryWalletStore is the zero-durability default WalletStore.
type MemoryWalletStore struct{}

// NewMemoryWalletStore builds a WalletStore that persists nothing.
func NewMemoryWalletStore() *MemoryWalletStore { return &MemoryWalletStore{} }

func (*MemoryWalletStore) SaveWallet(types.Wallet) error         { return nil }
func (*MemoryWalletStore) DeleteWallet(types.WalletID) error     { return nil }
func (*MemoryWalletStore) LoadWallets() ([]types.Wallet, error)  { return nil, nil }
func (*MemoryWalletStore) Close() error                          { return nil }

// MemoryBalanceStore is the zero-durability default BalanceStore.
type MemoryBalanceStore struct{}

// NewMemoryBalanceStore builds a BalanceStore that persists nothing.
func NewMemoryBalanceStore() *MemoryBalanceStore { return &MemoryBalanceStore{} }

func (*MemoryBalanceStore) SaveBalance(types.ClaimableBalance) error       { return nil }
func (*MemoryBalanceStore) DeleteBalance(types.BalanceID) error            { return nil }
func (*MemoryBalanceStore) LoadBalances() ([]types.ClaimableBalance, error) { return nil, nil }
func (*MemoryBalanceStore) Close() error                                   { return nil }

var walletsBucket = []byte("Wallets")

// BoltWalletStore persists wallets into a BoltDatabase bucket, encoded with
// the same reflection-driven rivbin codec the txbuilder uses for
// transaction envelopes.
type BoltWalletStore struct {
	db *BoltDatabase
}

// OpenBoltWalletStore opens (creating if necessary) a bolt-backed wallet
// store at filename.
func OpenBoltWalletStore(filename string) (*BoltWalletStore, error) {
	db, err := OpenDatabase(WalletDBMetadata, filename)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(walletsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltWalletStore{db: db}, nil
}

// walletRecord is the on-disk shape of a Wallet; it exists separately from
// types.Wallet only so the CreatedAt timestamp round-trips as UnixNano
// (rivbin has no time.Time support, matching the teacher's own preference
// for integer timestamps on the wire).
type walletRecord struct {
	ID             string
	Address        string
	Secret         crypto.SecretKey
	Destination    string
	CreatedAtUnix  int64
	Quarantined    bool
}

func toWalletRecord(w types.Wallet) walletRecord {
	return walletRecord{
		ID:            string(w.ID),
		Address:       w.Address,
		Secret:        w.Secret,
		Destination:   w.Destination,
		CreatedAtUnix: w.CreatedAt.UnixNano(),
		Quarantined:   w.Quarantined,
	}
}

func (r walletRecord) toWallet() types.Wallet {
	return types.Wallet{
		ID:          types.WalletID(r.ID),
		Address:     r.Address,
		Secret:      r.Secret,
		Destination: r.Destination,
		CreatedAt:   time.Unix(0, r.CreatedAtUnix),
		Quarantined: r.Quarantined,
	}
}

// SaveWallet upserts w's record.
func (s *BoltWalletStore) SaveWallet(w types.Wallet) error {
	blob, err := rivbin.Marshal(toWalletRecord(w))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(walletsBucket).Put([]byte(w.ID), blob)
	})
}

// DeleteWallet removes id's record, if present.
func (s *BoltWalletStore) DeleteWallet(id types.WalletID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(walletsBucket).Delete([]byte(id))
	})
}

// LoadWallets returns every persisted wallet, used at startup to rehydrate
// the WalletRegistry.
func (s *BoltWalletStore) LoadWallets() ([]types.Wallet, error) {
	var out []types.Wallet
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(walletsBucket).ForEach(func(_, v []byte) error {
			var rec walletRecord
			if err := rivbin.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec.toWallet())
			return nil
		})
	})
	return out, err
}

// Close closes the underlying database.
func (s *BoltWalletStore) Close() error { return s.db.Close() }

var balancesBucket = []byte("Balances")

// BoltBalanceStore persists claimable balances into a BoltDatabase bucket.
type BoltBalanceStore struct {
	db *BoltDatabase
}

// OpenBoltBalanceStore opens (creating if necessary) a bolt-backed balance
// store at filename.
func OpenBoltBalanceStore(filename string) (*BoltBalanceStore, error) {
	db, err := OpenDatabase(BalanceDBMetadata, filename)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(balancesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltBalanceStore{db: db}, nil
}

// balanceRecord is the on-disk shape of a ClaimableBalance; UnlockAt is
// carried as UnixNano for the same reason as walletRecord.CreatedAtUnix.
type balanceRecord struct {
	ID            string
	WalletID      string
	AmountDecimal string
	UnlockAtUnix  int64
	State         int
	RetryIndex    int
}

func toBalanceRecord(b types.ClaimableBalance) balanceRecord {
	return balanceRecord{
		ID:            string(b.ID),
		WalletID:      string(b.WalletID),
		AmountDecimal: b.Amount.String(),
		UnlockAtUnix:  b.UnlockAt.UnixNano(),
		State:         int(b.State),
		RetryIndex:    b.RetryIndex,
	}
}

func (r balanceRecord) toBalance() (types.ClaimableBalance, error) {
	amount, err := types.NewAmountFromString(r.AmountDecimal)
	if err != nil {
		return types.ClaimableBalance{}, err
	}
	return types.ClaimableBalance{
		ID:         types.BalanceID(r.ID),
		WalletID:   types.WalletID(r.WalletID),
		Amount:     amount,
		UnlockAt:   time.Unix(0, r.UnlockAtUnix),
		State:      types.BalanceState(r.State),
		RetryIndex: r.RetryIndex,
	}, nil
}

// SaveBalance upserts b's record.
func (s *BoltBalanceStore) SaveBalance(b types.ClaimableBalance) error {
	blob, err := rivbin.Marshal(toBalanceRecord(b))
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(balancesBucket).Put([]byte(b.ID), blob)
	})
}

// DeleteBalance removes id's record, if present.
func (s *BoltBalanceStore) DeleteBalance(id types.BalanceID) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(balancesBucket).Delete([]byte(id))
	})
}

// LoadBalances returns every persisted balance, used at startup to
// rehydrate the BalanceRegistry.
func (s *BoltBalanceStore) LoadBalances() ([]types.ClaimableBalance, error) {
	var out []types.ClaimableBalance
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(balancesBucket).ForEach(func(_, v []byte) error {
			var rec balanceRecord
			if err := rivbin.Unmarshal(v, &rec); err != nil {
				return err
			}
			balance, err := rec.toBalance()
			if err != nil {
				return err
			}
			out = append(out, balance)
			return nil
		})
	})
	return out, err
}

// Close closes the underlying database.
func (s *BoltBalanceStore) Close() error { return s.db.Close() }
