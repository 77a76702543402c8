package model

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var schemaPrinter = message.NewPrinter(language.English)

// schemas holds the compiled structural schema of each artifact kind.
var schemas = map[string]*jsonschema.Schema{}

func init() {
	for _, kind := range []string{KindStandardScaler, KindSVC, KindRandomForest} {
		schemas[kind] = mustCompileSchema(kind + ".schema.json")
	}
}

func mustCompileSchema(name string) *jsonschema.Schema {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded %s: %v", name, err))
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, doc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// checkSchema rejects a document whose shape does not match its kind,
// before any field is decoded into a Go value.
func checkSchema(kind string, payload []byte) error {
	sch, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupported, kind)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("decode %s: %w", kind, err)
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("%s schema: %w", kind, err)
	}
	var problems []string
	collectSchemaErrors(ve, &problems)
	return fmt.Errorf("malformed %s document: %s", kind, strings.Join(problems, "; "))
}

func collectSchemaErrors(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(schemaPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, out)
	}
}
