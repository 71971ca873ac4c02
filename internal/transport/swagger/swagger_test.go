package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/frahmantamala/task-tracker/internal/transport/swagger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestSwagger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Swagger Suite")
}

const minimal = `openapi: 3.0.3
info:
  title: Task Tracker API
  version: 1.0.0
paths:
  /ping:
    get:
      responses:
        "200":
          description: pong
`

var _ = Describe("Document", func() {
	It("loads a valid document and serves it unchanged", func() {
		doc, err := swagger.Parse(context.Background(), []byte(minimal))
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Spec.Info.Title).To(Equal("Task Tracker API"))

		rec := httptest.NewRecorder()
		doc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, swagger.SpecRoute, nil))
		Expect(rec.Body.String()).To(Equal(minimal))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
	})

	It("rejects a document without info", func() {
		_, err := swagger.Parse(context.Background(), []byte("openapi: 3.0.3\npaths: {}\n"))
		Expect(err).To(HaveOccurred())
	})

	It("loads the shipped API description", func() {
		_, err := swagger.Load(context.Background(), "../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})
})
