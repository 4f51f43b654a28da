package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"tcw1/internal/models"
	"tcw1/internal/repositories/cache"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByEmail(context.Background(), "  Ada@Example.com ")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CachedReadsOmitCredentials(t *testing.T) {
	db, mock := newMockDB(t)
	mr := miniredis.RunT(t)
	client := cache.NewRedisClient(&cache.RedisConfig{Host: mr.Host(), Port: mr.Port()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewUserRepository(db, cache.NewCacheService(client, time.Minute))
	ctx := context.Background()

	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "email", "password", "two_factor_secret", "token_version"}).
			AddRow(3, "ada@example.com", "$2a$10$storedhash", "TOTPSECRET", 4)
	}
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).WillReturnRows(userRow())

	user, err := repo.GetCachedByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, user.TokenVersion)
	assert.Empty(t, user.Password)
	assert.Empty(t, user.TwoFactorSecret)

	raw, err := mr.Get(cache.UserKey(3))
	require.NoError(t, err)
	assert.NotContains(t, raw, "storedhash")
	assert.NotContains(t, raw, "TOTPSECRET")

	// served from the cache, no second query
	user, err = repo.GetCachedByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)

	// credential checks always read the full record
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).WillReturnRows(userRow())
	full, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$storedhash", full.Password)
	assert.Equal(t, "TOTPSECRET", full.TwoFactorSecret)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_IncrementTokenVersionMissingUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, nil)

	mock.ExpectExec(`UPDATE "users" SET "token_version"=token_version \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementTokenVersion(context.Background(), 42)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_ConfirmPending(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectExec(`UPDATE "blockchain_transactions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "blockchain_transactions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := repo.ConfirmPending(context.Background(), "0xabc", 15000001, 12, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.ConfirmPending(context.Background(), "0xabc", 15000001, 12, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepository_GetByHashNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "blockchain_transactions" WHERE transaction_hash = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByHash(context.Background(), "0xmissing")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListingRepository_ExpireBefore(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewListingRepository(db)

	mock.ExpectExec(`UPDATE "marketplace_listings" SET "status"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireBefore(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "products" WHERE is_active = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "sku", "price", "category", "is_active"}).
			AddRow(1, "Ledger Nano", "LN-1", 79.0, "hardware", true))

	products, total, err := repo.Search(context.Background(), SearchQuery{Text: "ledger", Category: "hardware", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "LN-1", products[0].SKU)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserWalletRepository_CreditWithoutWallet(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserWalletRepository(db)

	mock.ExpectExec(`UPDATE "user_wallets" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	credited, err := repo.Credit(context.Background(), 1, "BTC", 0.5, time.Now())
	require.NoError(t, err)
	assert.False(t, credited)
}

func TestTransactionRepository_ListRecentVerifiedSkipsUnconfirmed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTransactionRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "blockchain_transactions" WHERE verified = \$1 AND confirmed_at IS NOT NULL ORDER BY confirmed_at DESC NULLS LAST`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "transaction_hash", "verified"}).AddRow(1, "0xabc", true))

	txs, err := repo.ListRecentVerified(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func depositRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "deposit_amount", "currency", "status", "required_confirmations"}).
		AddRow(5, 2, 0.75, "BTC", status, 3)
}

func TestDepositRepository_ConfirmPendingCreditsInTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDepositRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "deposit_confirmations" SET .* WHERE id = \$\d+ AND status = \$\d+ AND required_confirmations <= \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "deposit_confirmations"`).
		WillReturnRows(depositRow(models.DepositStatusConfirmed))
	mock.ExpectExec(`UPDATE "user_wallets" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := repo.ConfirmPending(context.Background(), 5, 3, time.Now(), true)
	require.NoError(t, err)
	assert.True(t, res.Confirmed)
	assert.True(t, res.Credited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepository_ConfirmPendingAlreadySettled(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDepositRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "deposit_confirmations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	res, err := repo.ConfirmPending(context.Background(), 5, 4, time.Now(), true)
	require.NoError(t, err)
	assert.False(t, res.Confirmed)
	assert.False(t, res.Credited)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepositRepository_ConfirmPendingRollsBackOnCreditFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDepositRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "deposit_confirmations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "deposit_confirmations"`).
		WillReturnRows(depositRow(models.DepositStatusConfirmed))
	mock.ExpectExec(`UPDATE "user_wallets" SET`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	res, err := repo.ConfirmPending(context.Background(), 5, 3, time.Now(), true)
	assert.Error(t, err)
	assert.False(t, res.Confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRequestRepository_Approve(t *testing.T) {
	now := time.Now()
	req := &models.WalletRequest{ID: 8, WalletAddress: "0x52908400098527886E0F7030069857D2E4169EE7", ApprovedAt: &now}
	w := &models.UserWallet{UserID: 2, WalletType: "ETH", WalletAddress: req.WalletAddress, IsActive: true, AssignedAt: now}

	t.Run("creates the wallet with the approval", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRequestRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallet_requests" SET .* WHERE id = \$\d+ AND status = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "user_wallets"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		mock.ExpectCommit()

		ok, err := repo.Approve(context.Background(), req, w)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wallet insert failure keeps the request pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRequestRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallet_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO "user_wallets"`).
			WillReturnError(errors.New("duplicate key value"))
		mock.ExpectRollback()

		ok, err := repo.Approve(context.Background(), req, &models.UserWallet{UserID: 2, WalletType: "ETH"})
		assert.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no longer pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewWalletRequestRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "wallet_requests" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.Approve(context.Background(), req, nil)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLoginApprovalRepository_ListPendingByUserSkipsExpired(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLoginApprovalRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "login_approvals" WHERE user_id = \$1 AND status = \$2 AND expires_at > \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).AddRow(1, 3, models.ApprovalStatusPending))

	approvals, err := repo.ListPendingByUser(context.Background(), 3, time.Now())
	require.NoError(t, err)
	assert.Len(t, approvals, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
