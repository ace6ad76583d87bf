package product

import (
	"errors"
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"shelfscan/internal/inferring"
)

// mockResolver is a mock implementation of Resolver
type mockResolver struct {
	mu      sync.Mutex
	calls   int
	result  *AnalysisResult
	err     error
	started chan struct{} // closed when the first call enters
	block   chan struct{} // when set, Resolve waits until it is closed
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		result: &AnalysisResult{
			ProductName:     "Organic Milk",
			Category:        "Dairy",
			ExpiryDate:      "2026-09-03",
			ConfidenceScore: 0.85,
		},
	}
}

func (m *mockResolver) Resolve(input ScanInput) (*AnalysisResult, error) {
	m.mu.Lock()
	m.calls++
	first := m.calls == 1
	started := m.started
	block := m.block
	m.mu.Unlock()

	if first && started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockResolver) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockItemStore is a mock implementation of ItemStore
type mockItemStore struct {
	added  []NewItem
	addErr error
}

func (m *mockItemStore) AddItem(item NewItem) (*Item, error) {
	if m.addErr != nil {
		return nil, m.addErr
	}
	m.added = append(m.added, item)
	return &Item{ID: "stored-id", Barcode: item.Barcode, ProductName: item.ProductName}, nil
}

var _ = Describe("Coordinator", func() {
	var (
		resolver    *mockResolver
		store       *mockItemStore
		coordinator *Coordinator
	)

	BeforeEach(func() {
		resolver = newMockResolver()
		store = &mockItemStore{}
		coordinator = NewCoordinator(resolver, store)
	})

	Describe("HandleScan", func() {
		When("a new code resolves successfully", func() {
			var outcome ScanOutcome

			JustBeforeEach(func() {
				outcome = coordinator.HandleScan("123456")
			})

			It("should surface the result", func() {
				Expect(outcome.Dropped).To(BeFalse())
				Expect(outcome.Err).NotTo(HaveOccurred())
				Expect(outcome.Result.ProductName).To(Equal("Organic Milk"))
			})

			It("should record the code and clear the in-flight flag", func() {
				Expect(coordinator.Session()).To(Equal(Session{LastResolvedCode: "123456"}))
			})
		})

		When("the same code is scanned again after resolving", func() {
			var outcome ScanOutcome

			JustBeforeEach(func() {
				coordinator.HandleScan("123456")
				outcome = coordinator.HandleScan("123456")
			})

			It("should drop the duplicate event", func() {
				Expect(outcome.Dropped).To(BeTrue())
			})

			It("should invoke the cascade exactly once", func() {
				Expect(resolver.callCount()).To(Equal(1))
			})
		})

		When("a different code is scanned after resolving", func() {
			It("should resolve it as a fresh attempt", func() {
				coordinator.HandleScan("123456")
				outcome := coordinator.HandleScan("654321")
				Expect(outcome.Dropped).To(BeFalse())
				Expect(resolver.callCount()).To(Equal(2))
			})
		})

		When("scan frames arrive while a resolution is in flight", func() {
			var (
				first   chan ScanOutcome
				second  ScanOutcome
				release chan struct{}
			)

			BeforeEach(func() {
				release = make(chan struct{})
				resolver.started = make(chan struct{})
				resolver.block = release

				first = make(chan ScanOutcome, 1)
				go func() {
					first <- coordinator.HandleScan("123456")
				}()
				Eventually(resolver.started).Should(BeClosed())

				second = coordinator.HandleScan("123456")
				close(release)
			})

			It("should drop the concurrent frame", func() {
				Expect(second.Dropped).To(BeTrue())
			})

			It("should complete the original resolution", func() {
				Eventually(first).Should(Receive(WithTransform(func(o ScanOutcome) *AnalysisResult {
					return o.Result
				}, Not(BeNil()))))
			})

			It("should invoke the cascade exactly once", func() {
				Eventually(first).Should(Receive())
				Expect(resolver.callCount()).To(Equal(1))
			})
		})

		When("the resolution fails", func() {
			var outcome ScanOutcome

			BeforeEach(func() {
				resolver.err = fmt.Errorf("analyzing product code: %w", inferring.ErrUnavailable)
			})

			JustBeforeEach(func() {
				outcome = coordinator.HandleScan("123456")
			})

			It("should surface the error", func() {
				Expect(outcome.Err).To(HaveOccurred())
				Expect(outcome.Result).To(BeNil())
			})

			It("should permit an immediate retry of the same code", func() {
				Expect(coordinator.Session()).To(Equal(Session{}))

				resolver.err = nil
				retry := coordinator.HandleScan("123456")
				Expect(retry.Dropped).To(BeFalse())
				Expect(retry.Result).NotTo(BeNil())
			})
		})

		DescribeTable("failure classification",
			func(resolveErr error, expected FailureKind) {
				resolver.err = resolveErr
				outcome := coordinator.HandleScan("123456")
				Expect(outcome.Failure).To(Equal(expected))
			},
			Entry("invalid input", ErrInputRequired, FailureInvalidInput),
			Entry("missing provider credential", fmt.Errorf("analyzing product code: %w", inferring.ErrNotConfigured), FailureNotConfigured),
			Entry("unreachable provider", fmt.Errorf("analyzing product code: %w", inferring.ErrUnavailable), FailureUpstream),
			Entry("anything else", errors.New("boom"), FailureUnknown),
		)
	})

	Describe("Accept", func() {
		var item NewItem

		BeforeEach(func() {
			coordinator.HandleScan("123456")
			item = NewItem{
				Barcode:     "123456",
				ProductName: "Organic Milk",
				Category:    "Dairy",
				ExpiryDate:  "2026-09-03",
				Confidence:  0.85,
			}
		})

		When("the gateway save succeeds", func() {
			It("should persist the item", func() {
				stored, err := coordinator.Accept(item)
				Expect(err).NotTo(HaveOccurred())
				Expect(stored.ID).To(Equal("stored-id"))
				Expect(store.added).To(HaveLen(1))
			})

			It("should reset the session", func() {
				_, err := coordinator.Accept(item)
				Expect(err).NotTo(HaveOccurred())
				Expect(coordinator.Session()).To(Equal(Session{}))
			})
		})

		When("the gateway save fails", func() {
			BeforeEach(func() {
				store.addErr = errors.New("insert failed")
			})

			It("returns a persistence error", func() {
				_, err := coordinator.Accept(item)
				Expect(err).To(MatchError(ErrPersistence))
			})

			It("should keep the session so the save can be retried without re-resolving", func() {
				_, _ = coordinator.Accept(item)
				Expect(coordinator.Session()).To(Equal(Session{LastResolvedCode: "123456"}))

				store.addErr = nil
				_, err := coordinator.Accept(item)
				Expect(err).NotTo(HaveOccurred())
				Expect(resolver.callCount()).To(Equal(1))
			})
		})
	})

	Describe("Reset", func() {
		It("should clear the session", func() {
			coordinator.HandleScan("123456")
			coordinator.Reset()
			Expect(coordinator.Session()).To(Equal(Session{}))
		})

		It("should allow the last code to be scanned again", func() {
			coordinator.HandleScan("123456")
			coordinator.Reset()
			outcome := coordinator.HandleScan("123456")
			Expect(outcome.Dropped).To(BeFalse())
			Expect(resolver.callCount()).To(Equal(2))
		})
	})
})
