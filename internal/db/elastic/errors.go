package elastic

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/kailas-cloud/esdata/internal/db"
)

// errorBody is the error envelope returned by Elasticsearch.
type errorBody struct {
	Error struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
	Status int `json:"status"`
}

// ResponseError is a non-2xx Elasticsearch response.
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s: %s", e.Status, e.Type, e.Reason)
}

// Unwrap maps well-known Elasticsearch error types to db sentinels.
func (e *ResponseError) Unwrap() error {
	switch e.Type {
	case "index_not_found_exception":
		return db.ErrIndexNotFound
	case "resource_already_exists_exception":
		return db.ErrIndexExists
	case "version_conflict_engine_exception":
		return db.ErrVersionConflict
	}
	if e.Status == http.StatusConflict {
		return db.ErrVersionConflict
	}
	return nil
}

// responseError converts a transport error or an error status into *db.Error.
// The caller keeps ownership of res.Body.
func responseError(op string, res *esapi.Response, err error) error {
	if err != nil {
		return &db.Error{Op: op, Err: err}
	}
	if !res.IsError() {
		return nil
	}
	re := &ResponseError{Status: res.StatusCode}
	if res.Body != nil {
		var body errorBody
		if data, rerr := io.ReadAll(res.Body); rerr == nil && json.Unmarshal(data, &body) == nil {
			re.Type = body.Error.Type
			re.Reason = body.Error.Reason
		}
	}
	return &db.Error{Op: op, Err: re}
}

// isStatus reports whether err is a ResponseError with the given status.
func isStatus(err error, status int) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Status == status
}

// failed is responseError for responses whose body is decoded on success.
// On failure the body is closed here.
func failed(op string, res *esapi.Response, err error) error {
	err = responseError(op, res, err)
	if err != nil && res != nil && res.Body != nil {
		res.Body.Close()
	}
	return err
}
