package eventstream_test

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gazetap/pkg/eventstream"
	"github.com/papercomputeco/gazetap/pkg/storage"
)

var _ = Describe("Event", func() {
	var rec *storage.Record

	BeforeEach(func() {
		rec = &storage.Record{
			ID:         uuid.New(),
			SessionID:  "session-1",
			DeviceName: "Tobii",
			SampleName: "EyeData",
			Timestamp:  1700000000123,
			Left:       storage.Eye{X: 0.5, Y: 0.5, Valid: 1, Pupil: 3.2, PupilValid: 1},
			Right:      storage.Eye{X: -1, Y: -1, Pupil: -1},
			Line:       "1700000000123; 0.5, 0.5, 1.0, 3.2, 1.0; -1.0, -1.0, 0.0, -1, 0.0",
		}
	})

	It("marshals SampleEmittedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0)
		event := eventstream.NewSampleEmittedEvent(rec, "localhost:8088", now)

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKey("schema_version"))
		Expect(got).To(HaveKey("event_type"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("sample"))

		sample, ok := got["sample"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(sample["line"]).To(Equal(rec.Line))
	})

	It("fills the envelope from the record", func() {
		now := time.Unix(1735689600, 0)
		event := eventstream.NewSampleEmittedEvent(rec, "localhost:8088", now)

		Expect(event.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(event.EventType).To(Equal(eventstream.EventTypeSampleEmitted))
		Expect(uuid.Parse(event.EventID)).NotTo(Equal(uuid.Nil))
		Expect(event.EmittedAt).To(Equal(now.UTC()))
		Expect(event.Source).To(Equal(eventstream.EventSource{
			SessionID:  "session-1",
			DeviceName: "Tobii",
			Upstream:   "localhost:8088",
		}))
		Expect(event.Sample).To(BeIdenticalTo(rec))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeSampleEmitted).To(Equal("gazetap.sample.emitted"))
	})

	It("provides ErrNilSampleEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilSampleEvent).To(MatchError("nil sample event"))
	})
})
