package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"fxconvert/internal/adapters/postgres"
	"fxconvert/internal/domain"
	"fxconvert/internal/platform/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpg "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	pgSetupOnce sync.Once

	pgContainer *tcpg.PostgresContainer
	pgConnStr   string
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pgSetupOnce.Do(func() {
		startPostgres(t)
	})

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, pgConnStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	require.NoError(t, resetDatabase(ctx, pool))

	return pool
}

func startPostgres(t *testing.T) {
	ctx := context.Background()
	pg, err := tcpg.Run(ctx,
		"postgres:16-alpine",
		tcpg.WithDatabase("postgres"),
		tcpg.WithUsername("postgres"),
		tcpg.WithPassword("postgres"),
	)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	require.Eventually(t, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	}, 15*time.Second, 500*time.Millisecond)

	require.NoError(t, db.Migrate(ctx, pool))

	pgContainer = pg
	pgConnStr = dsn
}

func resetDatabase(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `truncate table rate_audits, monthly_rates, currencies, pivot_rates restart identity cascade`)
	return err
}

func insertCurrency(t *testing.T, pool *pgxpool.Pool, country, indicator string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(context.Background(),
		`insert into currencies(country, indicator, frequency, scale) values ($1, $2, 'Monthly', 'Units') returning id`,
		country, indicator,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func insertRate(t *testing.T, pool *pgxpool.Pool, currencyID int64, year, month int, rate float64) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`insert into monthly_rates(currency_id, year, month, rate) values ($1, $2, $3, $4)`,
		currencyID, year, month, rate,
	)
	require.NoError(t, err)
}

// ---------- CurrencyRepository tests ----------

func TestCurrencyRepository_FindCurrency_CaseInsensitive(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")

	c, err := repo.FindCurrency(ctx, "  vietnam ", "DOMESTIC CURRENCY PER US DOLLAR")
	require.NoError(t, err)
	require.Equal(t, id, c.ID)
	require.Equal(t, "Vietnam", c.Country)
	require.Equal(t, "Monthly", c.Frequency)
}

func TestCurrencyRepository_FindCurrency_NotFound(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)

	_, err := repo.FindCurrency(context.Background(), "Atlantis", "Domestic currency per US Dollar")
	require.ErrorIs(t, err, domain.ErrCurrencyNotFound)
}

func TestCurrencyRepository_FindCurrency_DBError(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.FindCurrency(ctx, "Vietnam", "x")
	require.ErrorIs(t, err, domain.ErrRepository)
	require.NotErrorIs(t, err, domain.ErrCurrencyNotFound)
}

func TestCurrencyRepository_GetCurrency(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Japan", "Domestic currency per US Dollar")

	c, err := repo.GetCurrency(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Japan", c.Country)

	_, err = repo.GetCurrency(ctx, id+100)
	require.ErrorIs(t, err, domain.ErrCurrencyNotFound)
}

func TestCurrencyRepository_ListCountries_DistinctSorted(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)

	insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertCurrency(t, pool, "Japan", "Domestic currency per US Dollar")
	insertCurrency(t, pool, "Vietnam", "Domestic currency per Euro")

	countries, err := repo.ListCountries(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Japan", "Vietnam"}, countries)
}

func TestCurrencyRepository_ListCurrencies_ByCountry(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewCurrencyRepository(pool)
	ctx := context.Background()

	insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertCurrency(t, pool, "Vietnam", "Domestic currency per Euro")
	insertCurrency(t, pool, "Japan", "Domestic currency per US Dollar")

	currencies, err := repo.ListCurrencies(ctx, "vietnam")
	require.NoError(t, err)
	require.Len(t, currencies, 2)
	require.Equal(t, "Domestic currency per Euro", currencies[0].Indicator)
	require.Equal(t, "Domestic currency per US Dollar", currencies[1].Indicator)

	empty, err := repo.ListCurrencies(ctx, "Atlantis")
	require.NoError(t, err)
	require.Empty(t, empty)
}

// ---------- RateRepository tests ----------

func TestRateRepository_GetRate(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertRate(t, pool, id, 2024, 1, 23000)

	rate, err := repo.GetRate(ctx, id, 2024, 1)
	require.NoError(t, err)
	require.Equal(t, 23000.0, rate)

	_, err = repo.GetRate(ctx, id, 2024, 2)
	require.ErrorIs(t, err, domain.ErrRateNotFound)
}

func TestRateRepository_ListRates_OrderedByMonth(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertRate(t, pool, id, 2024, 3, 30)
	insertRate(t, pool, id, 2024, 1, 10)
	insertRate(t, pool, id, 2024, 2, 20)
	insertRate(t, pool, id, 2023, 1, 99)

	rates, err := repo.ListRates(context.Background(), id, 2024)
	require.NoError(t, err)
	require.Len(t, rates, 3)
	for i, mr := range rates {
		require.Equal(t, i+1, mr.Month)
		require.Equal(t, 2024, mr.Year)
	}
}

func TestRateRepository_ListRatesAboveThreshold_Strict(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertRate(t, pool, id, 2024, 1, 10)
	insertRate(t, pool, id, 2024, 2, 20)
	insertRate(t, pool, id, 2024, 3, 30)

	rates, err := repo.ListRatesAboveThreshold(context.Background(), id, 2024, 20)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	require.Equal(t, 3, rates[0].Month)
}

func TestRateRepository_UpsertRate_CreateThenUpdate(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	key := domain.RateKey{CurrencyID: id, Year: 2024, Month: 5}

	created, err := repo.UpsertRate(ctx, key, 24000)
	require.NoError(t, err)
	require.True(t, created.Created())
	require.NotZero(t, created.Rate.ID)
	require.False(t, created.Rate.UpdatedAt.IsZero())

	updated, err := repo.UpsertRate(ctx, key, 25000)
	require.NoError(t, err)
	require.False(t, updated.Created())
	require.Equal(t, created.Rate.ID, updated.Rate.ID)
	require.Equal(t, 24000.0, *updated.Previous)

	rate, err := repo.GetRate(ctx, id, 2024, 5)
	require.NoError(t, err)
	require.Equal(t, 25000.0, rate)
}

func TestRateRepository_UpsertRate_ConcurrentWritersSeeEachPrevious(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	key := domain.RateKey{CurrencyID: id, Year: 2024, Month: 6}

	const writers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		creates  int
		previous []float64
	)
	for i := range writers {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			res, err := repo.UpsertRate(ctx, key, v)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Created() {
				creates++
				return
			}
			previous = append(previous, *res.Previous)
		}(float64(i + 1))
	}
	wg.Wait()

	require.Equal(t, 1, creates)
	require.Len(t, previous, writers-1)

	final, err := repo.GetRate(ctx, id, 2024, 6)
	require.NoError(t, err)

	// Every written value except the last one committed is observed as
	// the previous value by exactly one later writer.
	seen := make(map[float64]bool, len(previous))
	for _, p := range previous {
		require.False(t, seen[p], "previous value %v observed twice", p)
		seen[p] = true
		require.GreaterOrEqual(t, p, 1.0)
		require.LessOrEqual(t, p, float64(writers))
	}
	require.False(t, seen[final], "final rate %v reported as a previous value", final)
}

func TestRateRepository_UpsertRate_JoinsOuterTransaction(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewRateRepository(pool)
	tx := postgres.NewTransactor(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	key := domain.RateKey{CurrencyID: id, Year: 2024, Month: 7}

	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.UpsertRate(ctx, key, 1); err != nil {
			return err
		}
		return domain.ErrValidation
	})
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = repo.GetRate(ctx, id, 2024, 7)
	require.ErrorIs(t, err, domain.ErrRateNotFound)
}

// ---------- AuditRepository tests ----------

func TestAuditRepository_AppendAndList_NewestFirst(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewAuditRepository(pool)
	ctx := context.Background()

	vn := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	jp := insertCurrency(t, pool, "Japan", "Domestic currency per US Dollar")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, cid := range []int64{vn, jp, vn} {
		a, err := repo.AppendAudit(ctx, domain.RateAudit{
			CurrencyID:       cid,
			CurrencyCountry:  "c",
			Year:             2024,
			Month:            1,
			OldRate:          1,
			NewRate:          2,
			ChangePercentage: 100,
			UpdatedAt:        base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		require.NotZero(t, a.ID)
	}

	all, err := repo.ListAudits(ctx, domain.AuditFilter{}, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.True(t, all[0].UpdatedAt.After(all[1].UpdatedAt))
	require.True(t, all[1].UpdatedAt.After(all[2].UpdatedAt))

	onlyVN, err := repo.ListAudits(ctx, domain.AuditFilter{CurrencyID: &vn}, 10)
	require.NoError(t, err)
	require.Len(t, onlyVN, 2)
	for _, a := range onlyVN {
		require.Equal(t, vn, a.CurrencyID)
	}

	limited, err := repo.ListAudits(ctx, domain.AuditFilter{}, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	require.Equal(t, all[0].ID, limited[0].ID)
}

// ---------- PivotRepository tests ----------

func TestPivotRepository_ListPivotRates(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewPivotRepository(pool)
	ctx := context.Background()

	empty, err := repo.ListPivotRates(ctx)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = pool.Exec(ctx, `insert into pivot_rates(code, usd_value) values ('eur', 1.08), ('SDR', 1.33)`)
	require.NoError(t, err)

	pivots, err := repo.ListPivotRates(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]float64{"EUR": 1.08, "SDR": 1.33}, pivots)
}

// ---------- SeedRepository tests ----------

func TestSeedRepository_EnsureCurrency_Idempotent(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewSeedRepository(pool)
	ctx := context.Background()

	c := domain.Currency{Country: "Vietnam", Indicator: "Domestic currency per US Dollar", Frequency: "Monthly"}

	first, created, err := repo.EnsureCurrency(ctx, c)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, first.ID)

	c.Country = "VIETNAM"
	second, created, err := repo.EnsureCurrency(ctx, c)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Vietnam", second.Country)
}

func TestSeedRepository_InsertRates_SkipsExisting(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewSeedRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertRate(t, pool, id, 2024, 1, 10)

	n, err := repo.InsertRates(ctx, []domain.MonthlyRate{
		{CurrencyID: id, Year: 2024, Month: 1, Rate: 11},
		{CurrencyID: id, Year: 2024, Month: 2, Rate: 20},
		{CurrencyID: id, Year: 2024, Month: 3, Rate: 30},
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	var kept float64
	require.NoError(t, pool.QueryRow(ctx, `select rate from monthly_rates where currency_id=$1 and month=1`, id).Scan(&kept))
	require.Equal(t, 10.0, kept)

	n, err = repo.InsertRates(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSeedRepository_ResetAll(t *testing.T) {
	pool := setupPostgres(t)
	repo := postgres.NewSeedRepository(pool)
	ctx := context.Background()

	id := insertCurrency(t, pool, "Vietnam", "Domestic currency per US Dollar")
	insertRate(t, pool, id, 2024, 1, 10)

	require.NoError(t, repo.ResetAll(ctx))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `select count(*) from currencies`).Scan(&n))
	require.Zero(t, n)
	require.NoError(t, pool.QueryRow(ctx, `select count(*) from monthly_rates`).Scan(&n))
	require.Zero(t, n)
}
