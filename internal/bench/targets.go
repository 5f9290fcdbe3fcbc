package bench

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/btree"
	_ "modernc.org/sqlite"

	"bptree"
)

// checkEvery is how many keys are processed between context checks
const checkEvery = 1 << 14

// Tree measures bptree, scanning through the leaf chain
type Tree struct {
	tree *bptree.Tree
}

// NewTree creates a bptree target
func NewTree(opts ...bptree.Option) (*Tree, error) {
	tree, err := bptree.New(opts...)
	if err != nil {
		return nil, err
	}
	return &Tree{tree: tree}, nil
}

func (t *Tree) Name() string { return "bptree" }

func (t *Tree) Insert(ctx context.Context, keys []uint64) error {
	for i, k := range keys {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		t.tree.Insert(k)
	}
	return nil
}

func (t *Tree) LookUp(ctx context.Context, keys []uint64) (int, error) {
	found := 0
	for i, k := range keys {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return found, err
			}
		}
		if t.tree.LookUp(k).Valid {
			found++
		}
	}
	return found, nil
}

func (t *Tree) Scan(ctx context.Context) (int, error) {
	n := 0
	t.tree.Ascend(func(uint64) bool {
		n++
		return true
	})
	return n, ctx.Err()
}

func (t *Tree) Close() error { return nil }

// BTree measures github.com/google/btree
type BTree struct {
	tree   *btree.BTreeG[uint64]
	degree int
}

// NewBTree creates a google/btree target with the given degree
func NewBTree(degree int) *BTree {
	return &BTree{tree: btree.NewOrderedG[uint64](degree), degree: degree}
}

func (b *BTree) Name() string { return fmt.Sprintf("google/btree(%d)", b.degree) }

func (b *BTree) Insert(ctx context.Context, keys []uint64) error {
	for i, k := range keys {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		b.tree.ReplaceOrInsert(k)
	}
	return nil
}

func (b *BTree) LookUp(ctx context.Context, keys []uint64) (int, error) {
	found := 0
	for i, k := range keys {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return found, err
			}
		}
		if b.tree.Has(k) {
			found++
		}
	}
	return found, nil
}

func (b *BTree) Scan(ctx context.Context) (int, error) {
	n := 0
	b.tree.Ascend(func(uint64) bool {
		n++
		return true
	})
	return n, ctx.Err()
}

func (b *BTree) Close() error {
	b.tree.Clear(false)
	return nil
}

// SQLite measures an in-memory SQLite table keyed by INTEGER PRIMARY KEY.
// Keys are stored by their int64 bit pattern, so keys above MaxInt64 scan
// out of order but still count correctly.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens an in-memory database with one table
func NewSQLite(ctx context.Context) (*SQLite, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Each connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "CREATE TABLE keys (k INTEGER PRIMARY KEY)"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Insert(ctx context.Context, keys []uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO keys (k) VALUES (?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, int64(k)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) LookUp(ctx context.Context, keys []uint64) (int, error) {
	stmt, err := s.db.PrepareContext(ctx, "SELECT 1 FROM keys WHERE k = ?")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	found := 0
	for _, k := range keys {
		var one int
		err := stmt.QueryRowContext(ctx, int64(k)).Scan(&one)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return found, err
		default:
			found++
		}
	}
	return found, nil
}

func (s *SQLite) Scan(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT k FROM keys ORDER BY k")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var k int64
		if err := rows.Scan(&k); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
