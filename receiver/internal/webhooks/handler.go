package webhooks

import (
	"io/ioutil"
	"log"
	"net/http"

	"github.com/google/go-github/v33/github"
)

var emptyResponse = []byte("{}")

// handler is an implementation of the http.Handler interface that can handle
// webhooks (events) from GitHub by delegating to a transport-agnostic Service
// interface. Signature verification is expected to have been performed
// upstream by a SignatureVerificationFilter.
type handler struct {
	service Service
}

// NewHandler returns an implementation of the http.Handler interface that can
// handle webhooks (events) from GitHub by delegating to the provided Service.
func NewHandler(service Service) http.Handler {
	return &handler{
		service: service,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	w.Header().Set("Content-Type", "application/json")

	payload, err := ioutil.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write(emptyResponse) // nolint: errcheck
		return
	}

	if err = h.service.Handle(
		r.Context(),
		github.WebHookType(r),
		github.DeliveryID(r),
		payload,
	); err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	w.Write(emptyResponse) // nolint: errcheck
}
