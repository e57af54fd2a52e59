package inmemory_test

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gazetap/pkg/storage"
	"github.com/papercomputeco/gazetap/pkg/storage/inmemory"
)

func testRecord(ts int64) *storage.Record {
	return &storage.Record{
		ID:         uuid.New(),
		SessionID:  "session",
		DeviceName: "Tobii",
		SampleName: "EyeData",
		Timestamp:  ts,
		Line:       fmt.Sprintf("%d; 0.5, 0.5, 1.0, 3.2, 1.0; 0.5, 0.5, 1.0, 3.2, 1.0", ts),
	}
}

func timestamps(records []*storage.Record) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.Timestamp)
	}
	return out
}

var _ = Describe("Driver", func() {
	var (
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver(3)
	})

	Describe("Put and Get", func() {
		It("stores and retrieves a record", func() {
			rec := testRecord(1)

			isNew, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())

			got, err := driver.Get(ctx, rec.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(rec))
		})

		It("is idempotent for duplicate puts", func() {
			rec := testRecord(1)
			_, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())

			isNew, err := driver.Put(ctx, rec)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeFalse())

			Expect(driver.Count(ctx)).To(Equal(1))
		})

		It("rejects nil records", func() {
			_, err := driver.Put(ctx, nil)
			Expect(err).To(MatchError(storage.ErrNilRecord))
		})

		It("returns NotFoundError for unknown IDs", func() {
			_, err := driver.Get(ctx, uuid.New())
			Expect(err).To(BeAssignableToTypeOf(storage.NotFoundError{}))
		})
	})

	Describe("List", func() {
		It("returns records most recent first", func() {
			for ts := int64(1); ts <= 3; ts++ {
				_, err := driver.Put(ctx, testRecord(ts))
				Expect(err).NotTo(HaveOccurred())
			}

			records, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(timestamps(records)).To(Equal([]int64{3, 2, 1}))
		})

		It("honors the limit", func() {
			for ts := int64(1); ts <= 3; ts++ {
				_, _ = driver.Put(ctx, testRecord(ts))
			}

			records, err := driver.List(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(timestamps(records)).To(Equal([]int64{3, 2}))
		})

		It("returns an empty list for an empty store", func() {
			records, err := driver.List(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("eviction", func() {
		It("drops the oldest record once full", func() {
			first := testRecord(1)
			_, _ = driver.Put(ctx, first)
			for ts := int64(2); ts <= 5; ts++ {
				_, _ = driver.Put(ctx, testRecord(ts))
			}

			Expect(driver.Count(ctx)).To(Equal(3))

			records, err := driver.List(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(timestamps(records)).To(Equal([]int64{5, 4, 3}))

			_, err = driver.Get(ctx, first.ID)
			Expect(err).To(HaveOccurred())
		})

		It("accepts an evicted ID again", func() {
			first := testRecord(1)
			_, _ = driver.Put(ctx, first)
			for ts := int64(2); ts <= 4; ts++ {
				_, _ = driver.Put(ctx, testRecord(ts))
			}

			isNew, err := driver.Put(ctx, first)
			Expect(err).NotTo(HaveOccurred())
			Expect(isNew).To(BeTrue())
		})
	})

	It("falls back to the default capacity", func() {
		d := inmemory.NewDriver(0)
		for ts := int64(0); ts < inmemory.DefaultCapacity+10; ts++ {
			_, _ = d.Put(ctx, testRecord(ts))
		}
		Expect(d.Count(ctx)).To(Equal(inmemory.DefaultCapacity))
	})

	It("closes without error", func() {
		Expect(driver.Close()).To(Succeed())
	})
})
