// Package contract holds reusable checks that a registry client and the
// normalizer agree on the upstream response format. Each case serves a canned
// body from an httptest server and asserts on the normalized result.
package contract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"votecheck/internal/election/domain"
	"votecheck/internal/election/registry"
	id "votecheck/pkg/domain"
)

// ClientFactory builds a client pointed at urlTemplate.
type ClientFactory func(urlTemplate string) *registry.Client

// ContractTest is a single canned upstream response.
type ContractTest struct {
	Name         string
	Body         string
	ValidateFunc func(result domain.Result) error
}

// ContractSuite is a collection of contract tests for one registry.
type ContractSuite struct {
	Source     registry.Source
	NationalID id.NationalID
	NewClient  ClientFactory
	Tests      []ContractTest
}

// Run executes all contract tests in the suite.
func (s *ContractSuite) Run(t *testing.T) {
	for _, test := range s.Tests {
		t.Run(test.Name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, test.Body)
			client := s.NewClient(srv.URL + "/lookup/{id}")

			if client.Source() != s.Source {
				t.Fatalf("expected source %s, got %s", s.Source, client.Source())
			}

			payload, err := client.Lookup(context.Background(), s.NationalID)
			if err != nil {
				t.Fatalf("registry lookup failed: %v", err)
			}
			if string(payload.Body) != test.Body {
				t.Errorf("raw body was not retained verbatim")
			}

			result, err := domain.Normalize(payload.Response)
			if err != nil {
				t.Fatalf("normalize failed: %v", err)
			}

			// Well-formed records always carry area and unit numbers.
			if result.Region == "" {
				t.Error("region is empty")
			}
			if result.PollingStation == "" {
				t.Error("polling station is empty")
			}
			if result.HasEarlyVoted != (len(result.EarlyVoteInfo) > 0) {
				t.Error("earlyVoteInfo must be present exactly when hasEarlyVoted")
			}

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(result); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// NoDataTest checks that a body without a usable record reports ErrNoData
// after a successful fetch.
type NoDataTest struct {
	Name      string
	Body      string
	NewClient ClientFactory
}

// Run executes a no-data test.
func (nt *NoDataTest) Run(t *testing.T, nationalID id.NationalID) {
	t.Run(nt.Name, func(t *testing.T) {
		srv := serve(t, http.StatusOK, nt.Body)
		payload, err := nt.NewClient(srv.URL + "/{id}").Lookup(context.Background(), nationalID)
		if err != nil {
			t.Fatalf("registry lookup failed: %v", err)
		}
		if _, err := domain.Normalize(payload.Response); !errors.Is(err, domain.ErrNoData) {
			t.Fatalf("expected ErrNoData, got %v", err)
		}
	})
}

// ErrorContractTest validates that upstream failures follow the taxonomy.
type ErrorContractTest struct {
	Name          string
	Status        int
	Body          string
	ExpectedError registry.ErrorCategory
	ExpectedRetry bool
	NewClient     ClientFactory
}

// Run executes an error contract test.
func (ect *ErrorContractTest) Run(t *testing.T, nationalID id.NationalID) {
	t.Run(ect.Name, func(t *testing.T) {
		srv := serve(t, ect.Status, ect.Body)
		_, err := ect.NewClient(srv.URL + "/{id}").Lookup(context.Background(), nationalID)
		if err == nil {
			t.Fatal("expected error but got none")
		}
		if category := registry.GetCategory(err); category != ect.ExpectedError {
			t.Errorf("expected error category %s, got %s", ect.ExpectedError, category)
		}
		if retry := registry.IsRetryable(err); retry != ect.ExpectedRetry {
			t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, retry)
		}
	})
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
