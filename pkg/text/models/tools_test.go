package models

import (
	"encoding/json"
	"testing"
)

func TestCallPrettyPrint(t *testing.T) {
	c := Call{Name: "fetch_page", Inputs: Input{"url": "https://example.com", "page": 1}}
	got := c.PrettyPrint()
	want := "Call: 'fetch_page', inputs: [ 'page': '1','url': 'https://example.com' ]"
	if got != want {
		t.Fatalf("exp %q got %q", want, got)
	}

	empty := Call{Name: "web_search"}
	if got := empty.PrettyPrint(); got != "Call: 'web_search', inputs: [  ]" {
		t.Fatalf("unexpected empty pretty print: %q", got)
	}
}

func TestCallArguments(t *testing.T) {
	c := Call{Name: "web_search"}
	if got := c.Arguments(); got != "{}" {
		t.Fatalf("expected empty object for nil inputs, got %q", got)
	}
	c.Inputs = Input{"query": "golang"}
	var back map[string]any
	if err := json.Unmarshal([]byte(c.Arguments()), &back); err != nil {
		t.Fatalf("arguments not valid json: %v", err)
	}
	if back["query"] != "golang" {
		t.Fatalf("unexpected arguments: %v", back)
	}
}

func TestInputInt(t *testing.T) {
	testCases := []struct {
		desc    string
		in      Input
		want    int
		wantErr bool
	}{
		{desc: "missing uses default", in: Input{}, want: 3},
		{desc: "nil uses default", in: Input{"page": nil}, want: 3},
		{desc: "json float", in: Input{"page": float64(2)}, want: 2},
		{desc: "int", in: Input{"page": 4}, want: 4},
		{desc: "numeric string", in: Input{"page": " 5 "}, want: 5},
		{desc: "empty string uses default", in: Input{"page": ""}, want: 3},
		{desc: "fraction", in: Input{"page": 1.5}, wantErr: true},
		{desc: "garbage string", in: Input{"page": "one"}, wantErr: true},
		{desc: "bool", in: Input{"page": true}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := tc.in.Int("page", 3)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got: %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("exp %v got %v", tc.want, got)
			}
		})
	}
}

func TestInputString(t *testing.T) {
	in := Input{"url": "https://example.com", "page": 1}
	if s, ok := in.String("url"); !ok || s != "https://example.com" {
		t.Fatalf("unexpected url: %q, %v", s, ok)
	}
	if _, ok := in.String("page"); ok {
		t.Fatal("expected non-string to report false")
	}
	if _, ok := in.String("missing"); ok {
		t.Fatal("expected missing to report false")
	}
}

func TestInputSchemaPatchAndIsOk(t *testing.T) {
	is := &InputSchema{}
	is.Patch()
	if is.Type != "object" || is.Required == nil || is.Properties == nil {
		t.Fatalf("patch did not initialize fields: %#v", is)
	}

	is.Properties["arr"] = ParameterObject{Type: "array"}
	if is.IsOk() {
		t.Fatalf("expected IsOk to fail when array items are missing")
	}

	is.Properties["arr"] = ParameterObject{Type: "array", Items: &ParameterObject{Type: "string"}}
	if !is.IsOk() {
		t.Fatalf("expected IsOk to pass when array items are provided")
	}

	is.Required = []string{"missing"}
	if is.IsOk() {
		t.Fatalf("expected IsOk to fail when a required property is undeclared")
	}
}
