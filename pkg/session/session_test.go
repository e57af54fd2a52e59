package session_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gazetap/pkg/gaze"
	"github.com/papercomputeco/gazetap/pkg/imotions"
	"github.com/papercomputeco/gazetap/pkg/metrics"
	"github.com/papercomputeco/gazetap/pkg/session"
)

const referenceLine = `{"DeviceName":"T","SampleName":"EyeData","GazeLeftX":960,"GazeLeftY":540,` +
	`"GazeRightX":-1,"GazeRightY":-1,"PupilLeft":3.2,"PupilRight":-1,"GazeTime":1.0}` + "\n"

const referenceOutput = "1700000000000; 0.5, 0.5, 1.0, 3.2, 1.0; -1.0, -1.0, 0.0, -1, 0.0\n"

var fixedNow = time.UnixMilli(1700000000000)

func newSession(out io.Writer, opts ...func(*session.Config)) *session.Session {
	cfg := session.Config{
		ID:     "test-session",
		Screen: gaze.Screen{Width: 1920, Height: 1080},
		Filter: imotions.DefaultFilter(),
		Clock:  func() time.Time { return fixedNow },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return session.New(cfg, out)
}

var _ = Describe("Session", func() {
	var (
		out *bytes.Buffer
		ctx context.Context
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		ctx = context.Background()
	})

	Describe("Run", func() {
		It("emits the reference sample", func() {
			s := newSession(out)
			Expect(s.Run(ctx, newScriptedReceiver(referenceLine))).To(Succeed())
			Expect(out.String()).To(Equal(referenceOutput))
		})

		It("reassembles a sample split across two chunks", func() {
			head := `{"DeviceName":"T","SampleName":"EyeData",`
			tail := strings.TrimPrefix(referenceLine, head)

			s := newSession(out)
			Expect(s.Run(ctx, newScriptedReceiver(head, tail))).To(Succeed())
			Expect(out.String()).To(Equal(referenceOutput))
		})

		It("produces identical output for every split point", func() {
			whole := &bytes.Buffer{}
			Expect(newSession(whole).Run(ctx, newScriptedReceiver(referenceLine))).To(Succeed())

			for i := 1; i < len(referenceLine); i++ {
				split := &bytes.Buffer{}
				recv := newScriptedReceiver(referenceLine[:i], "", referenceLine[i:])
				Expect(newSession(split).Run(ctx, recv)).To(Succeed())
				Expect(split.String()).To(Equal(whole.String()), fmt.Sprintf("split at %d", i))
			}
		})

		It("emits one line per accepted sample in arrival order", func() {
			second := strings.Replace(referenceLine, `"GazeRightX":-1,"GazeRightY":-1`, `"GazeRightX":0,"GazeRightY":1080`, 1)
			s := newSession(out)
			Expect(s.Run(ctx, newScriptedReceiver(referenceLine+second))).To(Succeed())

			lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[1]).To(Equal("1700000000000; 0.5, 0.5, 1.0, 3.2, 1.0; 0.0, 1.0, 1.0, -1, 0.0"))
		})

		It("never emits the unterminated tail of the stream", func() {
			s := newSession(out)
			Expect(s.Run(ctx, newScriptedReceiver(strings.TrimSuffix(referenceLine, "\n")))).To(Succeed())
			Expect(out.String()).To(BeEmpty())
		})

		DescribeTable("discards lines without output",
			func(line string, counter func(session.Stats) uint64) {
				s := newSession(out)
				Expect(s.Run(ctx, newScriptedReceiver(line, referenceLine))).To(Succeed())

				Expect(out.String()).To(Equal(referenceOutput))
				st := s.Stats()
				Expect(counter(st)).To(Equal(uint64(1)))
				Expect(st.Emitted).To(Equal(uint64(1)))
			},
			Entry("malformed JSON", "{not json\n",
				func(st session.Stats) uint64 { return st.ParseErrors }),
			Entry("blank line", "\n",
				func(st session.Stats) uint64 { return st.ParseErrors }),
			Entry("missing SampleName", `{"DeviceName":"T","GazeLeftX":1}`+"\n",
				func(st session.Stats) uint64 { return st.ProtocolViolations }),
			Entry("missing DeviceName", `{"SampleName":"EyeData","GazeLeftX":1}`+"\n",
				func(st session.Stats) uint64 { return st.ProtocolViolations }),
			Entry("other sample kind", `{"DeviceName":"T","SampleName":"GSR","Value":1}`+"\n",
				func(st session.Stats) uint64 { return st.FilterMisses }),
			Entry("eye data without pupils", `{"DeviceName":"T","SampleName":"EyeData","GazeLeftX":1,"GazeLeftY":1,"GazeRightX":1,"GazeRightY":1,"GazeTime":1}`+"\n",
				func(st session.Stats) uint64 { return st.MissingFields }),
		)

		It("applies a device filter", func() {
			s := newSession(out, func(c *session.Config) {
				c.Filter = imotions.Filter{DeviceName: "Tobii", SampleName: imotions.EyeDataSample}
			})
			Expect(s.Run(ctx, newScriptedReceiver(referenceLine))).To(Succeed())
			Expect(out.String()).To(BeEmpty())
			Expect(s.Stats().FilterMisses).To(Equal(uint64(1)))
		})

		It("returns transport errors", func() {
			recv := newScriptedReceiver(referenceLine)
			recv.end = syscall.ECONNRESET

			s := newSession(out)
			err := s.Run(ctx, recv)
			Expect(err).To(MatchError(syscall.ECONNRESET))
			Expect(session.Classify(err)).To(Equal(session.OutcomeTransportError))
			Expect(out.String()).To(Equal(referenceOutput))
		})

		It("stops cleanly when canceled while waiting for data", func() {
			cctx, cancel := context.WithCancel(ctx)
			recv := &blockingReceiver{
				first:    []byte(referenceLine + `{"DeviceName":"T",`),
				received: make(chan struct{}),
			}

			done := make(chan error, 1)
			s := newSession(out)
			go func() { done <- s.Run(cctx, recv) }()

			Eventually(recv.received).Should(BeClosed())
			cancel()

			Eventually(done).Should(Receive(BeNil()))
			Expect(out.String()).To(Equal(referenceOutput))
		})

		It("returns immediately when the context is already canceled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			s := newSession(out)
			Expect(s.Run(cctx, newScriptedReceiver(referenceLine))).To(Succeed())
			Expect(out.String()).To(BeEmpty())
		})

		It("rejects an invalid screen before reading", func() {
			s := newSession(out, func(c *session.Config) { c.Screen = gaze.Screen{} })
			Expect(s.Run(ctx, newScriptedReceiver(referenceLine))).NotTo(Succeed())
		})

		It("ends the session when the sink fails", func() {
			s := newSession(failingWriter{})
			err := s.Run(ctx, newScriptedReceiver(referenceLine))
			Expect(err).To(MatchError(ContainSubstring("sink closed")))
		})
	})

	Describe("ProcessChunk", func() {
		It("ignores empty chunks", func() {
			s := newSession(out)
			Expect(s.ProcessChunk([]byte(`{"DeviceName":`))).To(Succeed())
			Expect(s.ProcessChunk(nil)).To(Succeed())
			Expect(s.Stats().CarryBytes).To(Equal(int64(len(`{"DeviceName":`))))
			Expect(s.Stats().Lines).To(BeZero())
		})

		It("flushes buffered sinks after every record", func() {
			sink := &countingFlusher{Writer: bufio.NewWriter(out)}
			s := newSession(sink)

			Expect(s.ProcessChunk([]byte(referenceLine + referenceLine))).To(Succeed())
			Expect(sink.flushes).To(Equal(2))
			Expect(out.String()).To(Equal(referenceOutput + referenceOutput))
		})

		It("hands emitted records to the recorder", func() {
			rec := &memoryRecorder{accept: true}
			s := newSession(out, func(c *session.Config) { c.Recorder = rec })

			Expect(s.ProcessChunk([]byte(referenceLine))).To(Succeed())
			Expect(rec.records).To(HaveLen(1))
			Expect(rec.records[0].SessionID).To(Equal("test-session"))
			Expect(rec.records[0].DeviceName).To(Equal("T"))
			Expect(rec.records[0].GazeTime).NotTo(BeNil())
			Expect(rec.records[0].GazeTime.Float64()).To(Equal(1.0))
			Expect(rec.records[0].Output.Left.X).To(Equal(0.5))
		})

		It("emits eye data samples that carry no GazeTime", func() {
			line := `{"DeviceName":"T","SampleName":"EyeData","GazeLeftX":960,"GazeLeftY":540,` +
				`"GazeRightX":-1,"GazeRightY":-1,"PupilLeft":3.2,"PupilRight":-1}` + "\n"
			rec := &memoryRecorder{accept: true}
			s := newSession(out, func(c *session.Config) { c.Recorder = rec })

			Expect(s.ProcessChunk([]byte(line))).To(Succeed())
			Expect(out.String()).To(Equal(referenceOutput))
			Expect(s.Stats().Emitted).To(Equal(uint64(1)))
			Expect(s.Stats().MissingFields).To(BeZero())

			Expect(rec.records).To(HaveLen(1))
			Expect(rec.records[0].GazeTime).To(BeNil())
		})

		It("counts records the recorder drops", func() {
			m := metrics.New()
			rec := &memoryRecorder{accept: false}
			s := newSession(out, func(c *session.Config) {
				c.Recorder = rec
				c.Metrics = m
			})

			Expect(s.ProcessChunk([]byte(referenceLine))).To(Succeed())
			Expect(out.String()).To(Equal(referenceOutput))
			Expect(s.Stats().RecorderDrops).To(Equal(uint64(1)))
		})
	})

	Describe("Stats", func() {
		It("accounts for chunks, bytes and lines", func() {
			s := newSession(out)
			Expect(s.ProcessChunk([]byte("a\nb"))).To(Succeed())
			Expect(s.ProcessChunk([]byte("\n"))).To(Succeed())

			st := s.Stats()
			Expect(st.SessionID).To(Equal("test-session"))
			Expect(st.Chunks).To(Equal(uint64(2)))
			Expect(st.Bytes).To(Equal(uint64(4)))
			Expect(st.Lines).To(Equal(uint64(2)))
			Expect(st.ParseErrors).To(Equal(uint64(2)))
			Expect(st.Screen).To(Equal("1920x1080"))
		})

		It("generates a session id when none is configured", func() {
			s := session.New(session.Config{Screen: gaze.Screen{Width: 1, Height: 1}}, out)
			Expect(s.ID()).NotTo(BeEmpty())
		})
	})
})

var _ = Describe("Classify", func() {
	DescribeTable("maps errors to outcomes",
		func(err error, want session.Outcome) {
			Expect(session.Classify(err)).To(Equal(want))
		},
		Entry("nil", nil, session.OutcomeEmitted),
		Entry("parse error", &imotions.ParseError{Line: "x"}, session.OutcomeParseError),
		Entry("protocol violation", &imotions.ProtocolViolationError{Field: "DeviceName"}, session.OutcomeProtocolViolation),
		Entry("missing field", &imotions.MissingFieldError{Field: "PupilLeft"}, session.OutcomeMissingField),
		Entry("end of stream", io.EOF, session.OutcomeEndOfStream),
		Entry("wrapped end of stream", fmt.Errorf("reading: %w", io.EOF), session.OutcomeEndOfStream),
		Entry("canceled", context.Canceled, session.OutcomeCanceled),
		Entry("connection refused", syscall.ECONNREFUSED, session.OutcomeTransportError),
		Entry("anything else", errors.New("boom"), session.OutcomeTransportError),
	)

	It("marks only session-ending outcomes as fatal", func() {
		Expect(session.OutcomeTransportError.Fatal()).To(BeTrue())
		Expect(session.OutcomeEndOfStream.Fatal()).To(BeTrue())
		Expect(session.OutcomeCanceled.Fatal()).To(BeTrue())
		Expect(session.OutcomeParseError.Fatal()).To(BeFalse())
		Expect(session.OutcomeFilterMiss.Fatal()).To(BeFalse())
	})
})
