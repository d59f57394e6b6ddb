package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	// maxBodyBytes caps the body of every non-upload form or JSON request.
	maxBodyBytes = 1 << 20
	// maxFormMemory bounds in-memory multipart parsing for plain form posts.
	maxFormMemory = 1 << 20
)

// fields are the submitted request values, whatever the body encoding.
type fields map[string]string

// get returns the first non-empty value among keys, so aliases such as
// email/username can be accepted for one field.
func (f fields) get(keys ...string) string {
	for _, k := range keys {
		if v := f[k]; v != "" {
			return v
		}
	}
	return ""
}

// has reports whether key was submitted at all, even empty.
func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

// readFields decodes a urlencoded, multipart or JSON body. Unlike
// gin's form binding it also reads bodies of DELETE requests.
func readFields(c *gin.Context) (fields, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	switch c.ContentType() {
	case binding.MIMEJSON:
		return jsonFields(c.Request.Body)
	case binding.MIMEMultipartPOSTForm:
		if err := c.Request.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, err
		}
		return firstValues(c.Request.MultipartForm.Value), nil
	default:
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, err
		}
		return firstValues(values), nil
	}
}

func firstValues(values map[string][]string) fields {
	f := make(fields, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			f[k] = vs[0]
		}
	}
	return f
}

func jsonFields(r io.Reader) (fields, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f := fields{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return f, nil
	}

	var body map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	for k, v := range body {
		switch val := v.(type) {
		case nil:
			f[k] = ""
		case string:
			f[k] = val
		case json.Number:
			f[k] = val.String()
		case bool:
			f[k] = strconv.FormatBool(val)
		default:
			f[k] = fmt.Sprint(val)
		}
	}
	return f, nil
}
