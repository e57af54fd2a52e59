package imotions_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/gazetap/pkg/imotions"
)

var _ = Describe("Filter", func() {
	record := func(device, sample string) *imotions.Record {
		r, err := imotions.ParseLine(`{"DeviceName":"` + device + `","SampleName":"` + sample + `"}`)
		Expect(err).NotTo(HaveOccurred())
		return r
	}

	It("accepts EyeData from any device by default", func() {
		f := imotions.DefaultFilter()
		Expect(f.Match(record("Tobii", "EyeData"))).To(BeTrue())
		Expect(f.Match(record("Other", "EyeData"))).To(BeTrue())
	})

	It("rejects other sample kinds by default", func() {
		f := imotions.DefaultFilter()
		Expect(f.Match(record("Tobii", "Fixation"))).To(BeFalse())
	})

	It("matches case-sensitively", func() {
		f := imotions.DefaultFilter()
		Expect(f.Match(record("Tobii", "eyedata"))).To(BeFalse())
	})

	It("restricts to a device when one is configured", func() {
		f := imotions.Filter{DeviceName: "Tobii", SampleName: imotions.EyeDataSample}
		Expect(f.Match(record("Tobii", "EyeData"))).To(BeTrue())
		Expect(f.Match(record("Other", "EyeData"))).To(BeFalse())
	})

	It("matches anything when both expectations are empty", func() {
		f := imotions.Filter{}
		Expect(f.Match(record("X", "Y"))).To(BeTrue())
	})
})
