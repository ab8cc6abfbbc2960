package seed_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/seed"
	testutils "github.com/fretwork/jar/pkg/utils/test"
)

func TestSeed(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Seed Suite")
}

const seedJSON = `[
  {"text": "major scales", "category": "daily", "tags": ["scales"]},
  {"text": "slow blues licks", "category": "one_day", "state": "completed"},
  {"text": "arpeggio sweeps", "category": "two_three_days"}
]`

var _ = Describe("LoadFile", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "seed-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	writeSeed := func(content string) string {
		path := filepath.Join(tmpDir, "routines.json")
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
		return path
	}

	It("loads and validates records", func() {
		routines, err := seed.LoadFile(writeSeed(seedJSON))
		Expect(err).NotTo(HaveOccurred())
		Expect(routines).To(HaveLen(3))
		Expect(routines[0].Tags).To(Equal([]string{"scales"}))
	})

	It("defaults state to not_completed", func() {
		routines, err := seed.LoadFile(writeSeed(seedJSON))
		Expect(err).NotTo(HaveOccurred())
		Expect(routines[0].State).To(Equal(routine.StateNotCompleted))
		Expect(routines[1].State).To(Equal(routine.StateCompleted))
	})

	It("rejects records with an unknown category", func() {
		_, err := seed.LoadFile(writeSeed(`[{"text": "x", "category": "weekly"}]`))
		Expect(err).To(HaveOccurred())
	})

	It("rejects records without text", func() {
		_, err := seed.LoadFile(writeSeed(`[{"text": "", "category": "daily"}]`))
		Expect(err).To(HaveOccurred())
	})

	It("fails on a missing file", func() {
		_, err := seed.LoadFile(filepath.Join(tmpDir, "nope.json"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Build", func() {
	var (
		ctx      context.Context
		driver   *testutils.MockDriver
		embedder *testutils.MockEmbedder
		logger   *zap.Logger
		input    []routine.Routine
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockDriver()
		embedder = testutils.NewMockEmbedder()
		logger = zap.NewNop()
		input = []routine.Routine{
			{Text: "major scales", Category: routine.CategoryDaily, State: routine.StateNotCompleted},
			{Text: "chord voicings", Category: routine.CategoryOneDay, State: routine.StateNotCompleted},
		}
	})

	It("seeds an empty store and assigns fresh ids", func() {
		result, err := seed.Build(ctx, driver, embedder, input, false, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Seeded).To(Equal(2))
		Expect(result.Skipped).To(BeFalse())

		Expect(driver.Routines).To(HaveLen(2))
		for _, r := range driver.Routines {
			Expect(r.ID).NotTo(BeEmpty())
		}
		Expect(driver.Routines[0].ID).NotTo(Equal(driver.Routines[1].ID))
	})

	It("skips a populated store without force", func() {
		driver = testutils.NewMockDriver(routine.Routine{
			ID: "existing", Text: "old", Category: routine.CategoryDaily, State: routine.StateNotCompleted,
		})

		result, err := seed.Build(ctx, driver, embedder, input, false, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Skipped).To(BeTrue())
		Expect(result.Seeded).To(BeZero())
		Expect(driver.Routines).To(HaveLen(1))
		Expect(driver.Routines[0].ID).To(Equal("existing"))
	})

	It("replaces a populated store with force", func() {
		driver = testutils.NewMockDriver(routine.Routine{
			ID: "existing", Text: "old", Category: routine.CategoryDaily, State: routine.StateNotCompleted,
		})

		result, err := seed.Build(ctx, driver, embedder, input, true, logger)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Skipped).To(BeFalse())
		Expect(result.Seeded).To(Equal(2))

		Expect(driver.Routines).To(HaveLen(2))
		for _, r := range driver.Routines {
			Expect(r.ID).NotTo(Equal("existing"))
		}
	})

	It("propagates embedder failures without writing", func() {
		embedder.FailOn = "major scales"
		_, err := seed.Build(ctx, driver, embedder, input, false, logger)
		Expect(err).To(HaveOccurred())
		Expect(driver.Routines).To(BeEmpty())
	})
})
