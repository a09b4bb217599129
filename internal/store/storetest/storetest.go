// Package storetest はテスト用にインメモリ SQLite の Store を用意します。
package storetest

import (
	"context"
	"strings"
	"testing"

	"github.com/yourusername/blog-forge/internal/models"
	"github.com/yourusername/blog-forge/internal/store"
)

// New はテストごとに独立したインメモリデータベースを開き、スキーマを適用して返します。
func New(t testing.TB) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"

	ctx := context.Background()
	st, err := store.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// PostRow は削除済みかどうかに関わらず投稿の行をそのまま読み出します。
func PostRow(t testing.TB, st *store.Store, id string) models.Post {
	t.Helper()
	var p models.Post
	if err := st.DB().Where("id = ?", id).First(&p).Error; err != nil {
		t.Fatalf("load post %s: %v", id, err)
	}
	return p
}
