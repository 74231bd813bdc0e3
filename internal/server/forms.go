package server

import (
	"encoding/json"
	"errors"
	"helpmatch/pkg/types"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

// decodeQuery fills dst from the query string with the form decoder.
func decodeQuery(r *http.Request, dst any) error {
	if err := decoder.Decode(dst, r.URL.Query()); err != nil {
		return types.InvalidInputf("invalid query parameters: %v", err)
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return types.InvalidInputf("request body is required")
		}
		return types.InvalidInputf("invalid request body: %v", err)
	}

	return nil
}

func requestIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, types.InvalidInputf("invalid request id")
	}
	return id, nil
}

type ratingInput struct {
	Rating int `json:"rating"`
}
