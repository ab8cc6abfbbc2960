package routine_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fretwork/jar/pkg/routine"
)

func TestRoutine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Routine Suite")
}

var _ = Describe("ParseCategory", func() {
	It("accepts every known category", func() {
		for _, c := range routine.Categories() {
			parsed, err := routine.ParseCategory(string(c))
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(c))
		}
	})

	It("rejects unknown categories", func() {
		_, err := routine.ParseCategory("weekly")
		Expect(err).To(HaveOccurred())
	})

	It("rejects the empty string", func() {
		_, err := routine.ParseCategory("")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ParseState", func() {
	It("accepts the two concrete states", func() {
		Expect(routine.ParseState("not_completed")).To(Equal(routine.StateNotCompleted))
		Expect(routine.ParseState("completed")).To(Equal(routine.StateCompleted))
	})

	It("rejects unknown states", func() {
		_, err := routine.ParseState("done")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ParseStateFilter", func() {
	It("treats empty and all as the unfiltered state", func() {
		Expect(routine.ParseStateFilter("")).To(Equal(routine.StateAny))
		Expect(routine.ParseStateFilter("all")).To(Equal(routine.StateAny))
	})

	It("passes concrete states through", func() {
		Expect(routine.ParseStateFilter("completed")).To(Equal(routine.StateCompleted))
	})

	It("rejects unknown values", func() {
		_, err := routine.ParseStateFilter("finished")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Validate", func() {
	It("accepts a well-formed routine", func() {
		r := routine.Routine{
			Text:     "practice major scales",
			Category: routine.CategoryDaily,
			Tags:     []string{"scales", "technique"},
			State:    routine.StateNotCompleted,
		}
		Expect(r.Validate()).To(Succeed())
	})

	It("rejects empty text", func() {
		r := routine.Routine{
			Category: routine.CategoryDaily,
			State:    routine.StateNotCompleted,
		}
		Expect(r.Validate()).NotTo(Succeed())
	})

	It("rejects an invalid category", func() {
		r := routine.Routine{
			Text:     "practice major scales",
			Category: routine.Category("weekly"),
			State:    routine.StateNotCompleted,
		}
		Expect(r.Validate()).NotTo(Succeed())
	})

	It("rejects an invalid state", func() {
		r := routine.Routine{
			Text:     "practice major scales",
			Category: routine.CategoryDaily,
			State:    routine.State("done"),
		}
		Expect(r.Validate()).NotTo(Succeed())
	})
})

var _ = Describe("Tags", func() {
	It("round-trips through join and split", func() {
		tags := []string{"blues", "licks", "slow"}
		Expect(routine.SplitTags(routine.JoinTags(tags))).To(Equal(tags))
	})

	It("splits the empty string to no tags", func() {
		Expect(routine.SplitTags("")).To(BeEmpty())
	})
})
