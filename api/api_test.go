package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/routine"
	"github.com/fretwork/jar/pkg/service"
	"github.com/fretwork/jar/pkg/store"
	testutils "github.com/fretwork/jar/pkg/utils/test"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

func apiTestRoutines() []routine.Routine {
	return []routine.Routine{
		{ID: "r1", Text: "major scales", Category: routine.CategoryDaily, Tags: []string{"scales"}, State: routine.StateNotCompleted},
		{ID: "r2", Text: "slow blues licks", Category: routine.CategoryDaily, State: routine.StateCompleted},
		{ID: "r3", Text: "chord voicings", Category: routine.CategoryOneDay, State: routine.StateNotCompleted},
	}
}

var _ = Describe("Server", func() {
	var (
		server *Server
		driver *testutils.MockDriver
	)

	BeforeEach(func() {
		driver = testutils.NewMockDriver(apiTestRoutines()...)
		svc := service.New(driver, testutils.NewMockEmbedder(), zap.NewNop())
		server = NewServer(Config{ListenAddr: ":0"}, svc, zap.NewNop())
	})

	doRequest := func(method, target string) *http.Response {
		req := httptest.NewRequest(method, target, nil)
		resp, err := server.app.Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	decodeRoutines := func(resp *http.Response) []routine.Routine {
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		var routines []routine.Routine
		Expect(json.Unmarshal(body, &routines)).To(Succeed())
		return routines
	}

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp := doRequest(http.MethodGet, "/ping")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("pong"))
		})
	})

	Describe("GET /api/routines", func() {
		It("lists every routine without filters", func() {
			resp := doRequest(http.MethodGet, "/api/routines")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeRoutines(resp)).To(HaveLen(3))
		})

		It("filters by category, defaulting to not_completed", func() {
			resp := doRequest(http.MethodGet, "/api/routines?category=daily")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			routines := decodeRoutines(resp)
			Expect(routines).To(HaveLen(1))
			Expect(routines[0].ID).To(Equal("r1"))
		})

		It("widens the state filter with state=all", func() {
			resp := doRequest(http.MethodGet, "/api/routines?category=daily&state=all")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeRoutines(resp)).To(HaveLen(2))
		})

		It("lists not-completed routines across categories", func() {
			resp := doRequest(http.MethodGet, "/api/routines?state=not_completed")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(decodeRoutines(resp)).To(HaveLen(2))
		})

		It("rejects a bare state filter other than not_completed", func() {
			resp := doRequest(http.MethodGet, "/api/routines?state=completed")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an unknown category", func() {
			resp := doRequest(http.MethodGet, "/api/routines?category=weekly")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns 503 when the store is unavailable", func() {
			driver.FailAll = true
			resp := doRequest(http.MethodGet, "/api/routines")
			Expect(resp.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Describe("GET /api/routines/random", func() {
		It("requires a category", func() {
			resp := doRequest(http.MethodGet, "/api/routines/random")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("picks from the filtered set", func() {
			resp := doRequest(http.MethodGet, "/api/routines/random?category=daily")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			var picked routine.Routine
			Expect(json.Unmarshal(body, &picked)).To(Succeed())
			Expect(picked.ID).To(Equal("r1"))
		})

		It("returns 404 when the filtered set is empty", func() {
			resp := doRequest(http.MethodGet, "/api/routines/random?category=two_three_days")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("GET /api/routines/search", func() {
		BeforeEach(func() {
			driver.Results = []store.QueryResult{
				{Routine: routine.Routine{ID: "r1", Text: "major scales"}, Score: 0.2},
				{Routine: routine.Routine{ID: "r3", Text: "chord voicings"}, Score: 0.7},
			}
		})

		It("requires a query", func() {
			resp := doRequest(http.MethodGet, "/api/routines/search")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns scored results", func() {
			resp := doRequest(http.MethodGet, "/api/routines/search?query=scales")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			var results []routine.SearchResult
			Expect(json.Unmarshal(body, &results)).To(Succeed())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("r1"))
			Expect(results[0].Score).To(BeNumerically("~", 0.2, 0.001))
		})

		It("applies the min_score threshold", func() {
			resp := doRequest(http.MethodGet, "/api/routines/search?query=scales&min_score=0.5")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			var results []routine.SearchResult
			Expect(json.Unmarshal(body, &results)).To(Succeed())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("r1"))
		})

		It("rejects a non-positive top_n", func() {
			resp := doRequest(http.MethodGet, "/api/routines/search?query=scales&top_n=0")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a non-numeric min_score", func() {
			resp := doRequest(http.MethodGet, "/api/routines/search?query=scales&min_score=abc")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("PUT /api/routines/:id/complete", func() {
		It("marks the routine completed", func() {
			resp := doRequest(http.MethodPut, "/api/routines/r1/complete")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			r, err := driver.GetByID(context.Background(), "r1")
			Expect(err).NotTo(HaveOccurred())
			Expect(r.State).To(Equal(routine.StateCompleted))
		})

		It("returns 404 for an unknown id", func() {
			resp := doRequest(http.MethodPut, "/api/routines/missing/complete")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Describe("PUT /api/routines/:id/uncomplete", func() {
		It("marks the routine not completed", func() {
			resp := doRequest(http.MethodPut, "/api/routines/r2/uncomplete")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			r, err := driver.GetByID(context.Background(), "r2")
			Expect(err).NotTo(HaveOccurred())
			Expect(r.State).To(Equal(routine.StateNotCompleted))
		})
	})
})
