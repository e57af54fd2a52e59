package postgres_test

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gazetap/pkg/storage"
	"github.com/papercomputeco/gazetap/pkg/storage/postgres"
)

func postgresTestRecord(ts int64) *storage.Record {
	gazeTime := float64(ts)
	return &storage.Record{
		ID:         uuid.New(),
		SessionID:  "session-1",
		DeviceName: "Tobii",
		SampleName: "EyeData",
		GazeTime:   &gazeTime,
		Timestamp:  ts,
		Left:       storage.Eye{X: 0.5, Y: 0.5, Valid: 1, Pupil: 3.2, PupilValid: 1},
		Right:      storage.Eye{X: 0.25, Y: 0.75, Valid: 1, Pupil: 3.1, PupilValid: 1},
		Line:       fmt.Sprintf("%d; 0.5, 0.5, 1.0, 3.2, 1.0; 0.25, 0.75, 1.0, 3.1, 1.0", ts),
	}
}

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("GAZETAP_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("GAZETAP_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	var (
		driver *postgres.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		dsn := connStr()

		var err error
		driver, err = postgres.NewDriver(ctx, dsn)
		Expect(err).NotTo(HaveOccurred())

		// Clean all samples before each test for isolation.
		Expect(driver.Truncate(ctx)).To(Succeed())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	It("round-trips every column", func() {
		rec := postgresTestRecord(1700000000123)

		isNew, err := driver.Put(ctx, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeTrue())

		got, err := driver.Get(ctx, rec.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(rec))
	})

	It("is idempotent for duplicate puts", func() {
		rec := postgresTestRecord(1)
		_, err := driver.Put(ctx, rec)
		Expect(err).NotTo(HaveOccurred())

		isNew, err := driver.Put(ctx, rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(isNew).To(BeFalse())
	})

	It("lists most recent first with a limit", func() {
		for ts := int64(1); ts <= 3; ts++ {
			_, err := driver.Put(ctx, postgresTestRecord(ts))
			Expect(err).NotTo(HaveOccurred())
		}

		records, err := driver.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Timestamp).To(Equal(int64(3)))

		Expect(driver.Count(ctx)).To(Equal(3))
	})

	It("returns NotFoundError for unknown IDs", func() {
		_, err := driver.Get(ctx, uuid.New())
		Expect(err).To(BeAssignableToTypeOf(storage.NotFoundError{}))
	})
})

var _ = Describe("NewDriver", func() {
	It("fails when the database is unreachable", func() {
		_, err := postgres.NewDriver(context.Background(), "postgres://gazetap@127.0.0.1:1/gazetap?sslmode=disable&connect_timeout=1")
		Expect(err).To(MatchError(ContainSubstring("failed to ping database")))
	})
})
