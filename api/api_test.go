package api_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gazetap/api"
	"github.com/papercomputeco/gazetap/pkg/logger"
	"github.com/papercomputeco/gazetap/pkg/metrics"
	"github.com/papercomputeco/gazetap/pkg/session"
	"github.com/papercomputeco/gazetap/pkg/storage"
	"github.com/papercomputeco/gazetap/pkg/storage/inmemory"
)

type fixedStats session.Stats

func (f fixedStats) Stats() session.Stats {
	return session.Stats(f)
}

func apiTestRecord(ts int64) *storage.Record {
	return &storage.Record{
		ID:         uuid.New(),
		SessionID:  "session-1",
		DeviceName: "Tobii",
		SampleName: "EyeData",
		Timestamp:  ts,
	}
}

func get(server *api.Server, path string) (*http.Response, []byte) {
	resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, path, nil))
	Expect(err).NotTo(HaveOccurred())
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, body
}

var _ = Describe("Server", func() {
	var (
		server *api.Server
		driver *inmemory.Driver
		m      *metrics.Metrics
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver(16)
		m = metrics.New()
		server = api.NewServer(
			api.Config{ListenAddr: ":0"},
			driver,
			fixedStats{SessionID: "session-1", Emitted: 2, ParseErrors: 1},
			m,
			logger.Nop(),
		)
	})

	It("answers ping", func() {
		resp, body := get(server, "/ping")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal(`"pong"`))
	})

	It("reports session and storage stats", func() {
		_, _ = driver.Put(ctx, apiTestRecord(1))

		resp, body := get(server, "/v1/stats")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var stats api.StatsResponse
		Expect(json.Unmarshal(body, &stats)).To(Succeed())
		Expect(stats.Session.SessionID).To(Equal("session-1"))
		Expect(stats.Session.Emitted).To(Equal(uint64(2)))
		Expect(stats.Session.ParseErrors).To(Equal(uint64(1)))
		Expect(stats.StoredSamples).To(Equal(1))
	})

	Describe("GET /v1/samples", func() {
		BeforeEach(func() {
			for ts := int64(1); ts <= 5; ts++ {
				_, err := driver.Put(ctx, apiTestRecord(ts))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("lists recent samples, most recent first", func() {
			resp, body := get(server, "/v1/samples")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var samples api.SamplesResponse
			Expect(json.Unmarshal(body, &samples)).To(Succeed())
			Expect(samples.Count).To(Equal(5))
			Expect(samples.Samples[0].Timestamp).To(Equal(int64(5)))
		})

		It("honors the limit", func() {
			_, body := get(server, "/v1/samples?limit=2")

			var samples api.SamplesResponse
			Expect(json.Unmarshal(body, &samples)).To(Succeed())
			Expect(samples.Count).To(Equal(2))
		})

		DescribeTable("rejects bad limits",
			func(limit string) {
				resp, body := get(server, "/v1/samples?limit="+limit)
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(string(body)).To(ContainSubstring("limit must be"))
			},
			Entry("non-numeric", "abc"),
			Entry("zero", "0"),
			Entry("negative", "-3"),
			Entry("too large", "10001"),
		)
	})

	It("returns an empty list for an empty store", func() {
		_, body := get(server, "/v1/samples")
		Expect(string(body)).To(ContainSubstring(`"samples":[]`))
	})

	Describe("GET /v1/samples/:id", func() {
		It("returns a stored sample", func() {
			rec := apiTestRecord(7)
			_, _ = driver.Put(ctx, rec)

			resp, body := get(server, "/v1/samples/"+rec.ID.String())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var got storage.Record
			Expect(json.Unmarshal(body, &got)).To(Succeed())
			Expect(got.ID).To(Equal(rec.ID))
		})

		It("returns 404 for unknown samples", func() {
			resp, _ := get(server, "/v1/samples/"+uuid.NewString())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("returns 400 for malformed ids", func() {
			resp, _ := get(server, "/v1/samples/not-a-uuid")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	It("serves Prometheus metrics", func() {
		m.ObserveChunk(42)
		m.ObserveEmitted()

		resp, body := get(server, "/metrics")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("gazetap_chunks_received_total 1"))
		Expect(string(body)).To(ContainSubstring("gazetap_samples_emitted_total 1"))
	})

	It("omits /metrics without a registry", func() {
		server = api.NewServer(api.Config{}, driver, fixedStats{}, nil, logger.Nop())
		resp, _ := get(server, "/metrics")
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})
})
