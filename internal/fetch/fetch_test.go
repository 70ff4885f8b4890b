// Copyright (c) 2025 Neomantra Corp

package fetch_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nrbf-go/nrbf-go/internal/fetch"
)

// Test Launcher
func TestFetch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "fetch suite")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = Describe("Client.Open", func() {
	It("returns the response body for a 200", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("nrbf-bytes"))
		}))
		defer srv.Close()

		c := fetch.NewClient(discardLogger())
		body, err := c.Open(context.Background(), srv.URL)
		Expect(err).NotTo(HaveOccurred())
		defer body.Close()

		got, err := io.ReadAll(body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(got)).To(Equal("nrbf-bytes"))
	})

	It("errors on a non-2xx response", func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		c := fetch.NewClient(discardLogger())
		_, err := c.Open(context.Background(), srv.URL)
		Expect(err).To(HaveOccurred())
	})

	It("errors on a malformed URL", func() {
		c := fetch.NewClient(discardLogger())
		_, err := c.Open(context.Background(), "://not-a-url")
		Expect(err).To(HaveOccurred())
	})
})
