package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"reflect"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/International-Combat-Archery-Alliance/registration-client/upload"
	"github.com/International-Combat-Archery-Alliance/registration-client/validation"
)

type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is sent as multipart/form-data when it is a *Multipart and as
	// JSON otherwise. A nil Body sends no body.
	Body    any
	Headers map[string]string
}

// Request performs a single call to endpoint, relative to the base URL, and
// decodes a non-empty 2xx response body into out. An empty body leaves out
// untouched.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	_, err := c.send(ctx, endpoint, opts, out)
	return err
}

// send reports whether a response body was decoded into out.
func (c *Client) send(ctx context.Context, endpoint string, opts RequestOptions, out any) (bool, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := c.tracer.Start(ctx, method+" "+endpoint, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, NewTransportFailedError(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cred := c.getCredential(); cred != "" {
		req.Header.Set("Authorization", "Bearer "+cred)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, NewTransportFailedError(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, NewInvalidResponseError(resp.StatusCode, "Failed to read the server response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		backendErr := NewBackendError(resp.StatusCode, backendMessage(data))
		span.SetStatus(codes.Error, backendErr.Message)
		return false, backendErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return false, NewInvalidResponseError(resp.StatusCode, "Unexpected response from the server", err)
	}
	return true, nil
}

func backendMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return genericFailureMessage
	}
	return body.Error
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *Multipart:
		return b.encode()
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", NewFailedToEncodeError("Failed to encode request body", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// checkResponse runs struct validation over a decoded response. Slices are
// checked element by element.
func (c *Client) checkResponse(v any) error {
	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice:
		for i := range rv.Len() {
			if err := c.checkResponse(rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		if err := c.validate.Struct(rv.Interface()); err != nil {
			return NewInvalidResponseError(http.StatusOK, fmt.Sprintf("Unexpected response from the server: %v", validation.Fields(err)), err)
		}
		return nil
	default:
		return nil
	}
}

func do[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (T, error) {
	var out T
	decoded, err := c.send(ctx, endpoint, opts, &out)
	if err != nil {
		return out, err
	}
	if !decoded {
		return out, nil
	}
	if err := c.checkResponse(out); err != nil {
		return out, err
	}
	return out, nil
}

// Multipart is a multipart/form-data body built from plain fields and
// image files.
type Multipart struct {
	parts []multipartPart
}

type multipartPart struct {
	name  string
	value string
	file  upload.Image
}

func NewMultipart() *Multipart {
	return &Multipart{}
}

func (m *Multipart) AddField(name string, value string) {
	m.parts = append(m.parts, multipartPart{name: name, value: value})
}

// AddJSON adds v, JSON encoded, as a plain field.
func (m *Multipart) AddJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return NewFailedToEncodeError(fmt.Sprintf("Failed to encode %q", name), err)
	}
	m.AddField(name, string(data))
	return nil
}

func (m *Multipart) AddFile(name string, img upload.Image) {
	m.parts = append(m.parts, multipartPart{name: name, file: img})
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range m.parts {
		if p.file.IsZero() {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", NewFailedToEncodeError("Failed to encode form field", err)
			}
			continue
		}
		if err := writeFilePart(w, p.name, p.file); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", NewFailedToEncodeError("Failed to encode form", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, name string, img upload.Image) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, img.Filename()))
	h.Set("Content-Type", img.ContentType())

	part, err := w.CreatePart(h)
	if err != nil {
		return NewFailedToEncodeError("Failed to encode file", err)
	}

	r, err := img.Reader()
	if err != nil {
		return NewFailedToEncodeError("Failed to read file", err)
	}
	defer r.Close()

	if _, err := io.Copy(part, r); err != nil {
		return NewFailedToEncodeError("Failed to encode file", err)
	}
	return nil
}
