// Package bind decodes an HTTP request body (JSON or multipart form) into
// a struct and validates it.
package bind

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/bazaar/config"
	"github.com/shashiranjanraj/bazaar/pkg/validate"
)

// File is one uploaded multipart file, read into memory.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// Request decodes r according to its Content-Type: multipart/form-data is
// parsed with Multipart, anything else as JSON. Uploaded files are
// returned separately.
//
// Returns (errs, files, nil) when the body decoded but has field errors.
// Returns a non-nil error when the body is malformed or too large.
func Request(r *http.Request, dest interface{}) (map[string]string, []File, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return Multipart(r, dest)
	}
	errs, err := JSON(r, dest)
	return errs, nil, err
}

// JSON decodes r.Body into dest and runs validation. The body is capped at
// MAX_BODY_BYTES. Type mismatches ("stock": "ten") come back as field
// errors rather than a decode error.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return map[string]string{typeErr.Field: fmt.Sprintf("The %s field is invalid.", typeErr.Field)}, nil
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// Multipart fills dest from form values keyed by JSON tag. List fields read
// every value of "name" and "name[]". Files from every part are returned
// in form order.
func Multipart(r *http.Request, dest interface{}) (map[string]string, []File, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}

	errs := fill(dest, r.MultipartForm.Value)

	files, err := readFiles(r.MultipartForm.File)
	if err != nil {
		return nil, nil, err
	}

	for k, v := range validate.Struct(dest) {
		if _, seen := errs[k]; !seen {
			errs[k] = v
		}
	}
	if validate.HasErrors(errs) {
		return errs, files, nil
	}
	return nil, files, nil
}

func readFiles(form map[string][]*multipart.FileHeader) ([]File, error) {
	var files []File
	for _, field := range []string{"images[]", "images"} {
		for _, fh := range form[field] {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
			}
			files = append(files, File{Field: "images", Filename: fh.Filename, Data: data})
		}
	}
	return files, nil
}

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// fill sets each tagged field of dest from values and returns conversion
// failures keyed by field name.
func fill(dest interface{}, values map[string][]string) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(dest).Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := validate.JSONName(sf)
		raw, ok := lookup(values, name)
		if !ok {
			continue
		}
		if err := set(rv.Field(i), raw); err != nil {
			errs[name] = fmt.Sprintf("The %s field is invalid.", name)
		}
	}
	return errs
}

func lookup(values map[string][]string, name string) ([]string, bool) {
	var out []string
	found := false
	for _, key := range []string{name, name + "[]"} {
		if v, ok := values[key]; ok {
			out = append(out, v...)
			found = true
		}
	}
	// Indexed keys: tags[0], tags[1] ...
	for i := 0; ; i++ {
		v, ok := values[name+"["+strconv.Itoa(i)+"]"]
		if !ok {
			break
		}
		out = append(out, v...)
		found = true
	}
	return out, found
}

func set(field reflect.Value, raw []string) error {
	if field.Kind() == reflect.Ptr {
		ptr := reflect.New(field.Type().Elem())
		if err := set(ptr.Elem(), raw); err != nil {
			return err
		}
		field.Set(ptr)
		return nil
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() != reflect.Uint8 {
		out := reflect.MakeSlice(field.Type(), 0, len(raw))
		for _, s := range raw {
			if strings.TrimSpace(s) == "" {
				continue
			}
			el := reflect.New(field.Type().Elem()).Elem()
			if err := setScalar(el, s); err != nil {
				return err
			}
			out = reflect.Append(out, el)
		}
		field.Set(out)
		return nil
	}

	if len(raw) == 0 {
		return nil
	}
	return setScalar(field, raw[0])
}

func setScalar(v reflect.Value, s string) error {
	if reflect.PointerTo(v.Type()).Implements(textUnmarshaler) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(strings.TrimSpace(s)))
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		v.SetBool(b)
	default:
		return fmt.Errorf("bind: unsupported field kind %s", v.Kind())
	}
	return nil
}
