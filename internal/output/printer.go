// Copyright 2025 Dominik Schlosser
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dominikschlosser/av-verifier/internal/mdoc"
	"github.com/dominikschlosser/av-verifier/internal/openid4"
	"github.com/fatih/color"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.FgYellow)
	valueColor  = color.New(color.FgWhite)
	dimColor    = color.New(color.Faint)
	linkColor   = color.New(color.FgGreen)
	errorColor  = color.New(color.FgRed)
)

// Options controls how results are rendered.
type Options struct {
	JSON    bool
	Verbose bool
}

var markupReplacer = strings.NewReplacer(mdoc.LineBreak, "\n", "&nbsp;", " ")

// TerminalText converts the markup in a flattened attribute value to plain
// text: line breaks become newlines and non-breaking spaces spaces.
func TerminalText(value string) string {
	return markupReplacer.Replace(value)
}

// BuildAttestationsJSON returns the JSON-serializable form of decoded
// attestations. Attribute values keep their markup.
func BuildAttestationsJSON(records []mdoc.AttestationRecord) []mdoc.AttestationRecord {
	if records == nil {
		return []mdoc.AttestationRecord{}
	}
	return records
}

// PrintAttestations prints decoded attestations, one section per document.
func PrintAttestations(records []mdoc.AttestationRecord, opts Options) {
	if opts.JSON {
		PrintJSON(BuildAttestationsJSON(records))
		return
	}

	headerColor.Printf("mDOC Attestations (%d)\n", len(records))
	headerColor.Println(strings.Repeat("─", 50))

	for _, rec := range records {
		printSection(rec.Name)
		if opts.Verbose {
			dimColor.Printf("  format=%s kind=%s\n", rec.Format, rec.Kind)
		}
		if len(rec.Attributes) == 0 {
			dimColor.Println("  (no attributes)")
			continue
		}
		for _, attr := range rec.Attributes {
			printAttribute(attr)
		}
		for _, m := range rec.Metadata {
			printKV(m.Key, m.Value, 1)
		}
	}

	fmt.Println()
}

// printAttribute prints a single-line value next to its key and a record
// value as an indented block below it.
func printAttribute(attr mdoc.KeyValue) {
	text := TerminalText(attr.Value)
	if !strings.HasPrefix(attr.Value, mdoc.IndentUnit) && !strings.Contains(text, "\n") {
		printKV(attr.Key, text, 1)
		return
	}

	labelColor.Printf("  %s:\n", attr.Key)
	for _, line := range strings.Split(text, "\n") {
		valueColor.Printf("  %s\n", line)
	}
}

// BuildAuthorizationURIJSON returns the JSON-serializable map for a deep
// link. The decoded request is included when req is non-nil.
func BuildAuthorizationURIJSON(link string, req *openid4.AuthorizationRequest) map[string]any {
	out := map[string]any{
		"uri": link,
	}
	if req != nil {
		out["request"] = BuildAuthorizationRequestJSON(req)
	}
	return out
}

// PrintAuthorizationURI prints a wallet deep link. With Verbose the fields
// it carries are listed below it.
func PrintAuthorizationURI(link string, req *openid4.AuthorizationRequest, opts Options) {
	if opts.JSON {
		if !opts.Verbose {
			req = nil
		}
		PrintJSON(BuildAuthorizationURIJSON(link, req))
		return
	}

	headerColor.Println("Wallet Deep Link")
	headerColor.Println(strings.Repeat("─", 50))
	fmt.Println()
	linkColor.Println(link)

	if opts.Verbose && req != nil {
		printAuthorizationRequest(req, opts)
	}

	fmt.Println()
}

// BuildAuthorizationRequestJSON returns the JSON-serializable map for an authorization request.
func BuildAuthorizationRequestJSON(req *openid4.AuthorizationRequest) map[string]any {
	out := map[string]any{
		"type": "OID4VP Authorization Request",
	}
	if req.ClientID != "" {
		out["client_id"] = req.ClientID
	}
	if req.ResponseType != "" {
		out["response_type"] = req.ResponseType
	}
	if req.ResponseMode != "" {
		out["response_mode"] = req.ResponseMode
	}
	if req.ResponseURI != "" {
		out["response_uri"] = req.ResponseURI
	}
	if req.Nonce != "" {
		out["nonce"] = req.Nonce
	}
	if req.State != "" {
		out["state"] = req.State
	}
	if req.DCQLQuery != nil {
		out["dcql_query"] = req.DCQLQuery
	}
	return out
}

// PrintAuthorizationRequest prints the fields of a deep link read back into
// an authorization request.
func PrintAuthorizationRequest(req *openid4.AuthorizationRequest, opts Options) {
	if opts.JSON {
		PrintJSON(BuildAuthorizationRequestJSON(req))
		return
	}

	headerColor.Println("OID4VP Authorization Request")
	headerColor.Println(strings.Repeat("─", 50))
	printAuthorizationRequest(req, opts)
	fmt.Println()
}

func printAuthorizationRequest(req *openid4.AuthorizationRequest, opts Options) {
	printSection("Client")
	if req.ClientID != "" {
		printKV("Client ID", req.ClientID, 1)
	}
	if req.ResponseType != "" {
		printKV("Response Type", req.ResponseType, 1)
	}
	if req.ResponseMode != "" {
		printKV("Response Mode", req.ResponseMode, 1)
	}
	if req.ResponseURI != "" {
		printKV("Response URI", req.ResponseURI, 1)
	}

	if req.Nonce != "" || req.State != "" {
		printSection("Session")
		if req.Nonce != "" {
			printKV("Nonce", req.Nonce, 1)
		}
		if req.State != "" {
			printKV("State", req.State, 1)
		}
	}

	if req.DCQLQuery != nil {
		printSection("DCQL Query")
		b, _ := json.MarshalIndent(req.DCQLQuery, "  ", "  ")
		fmt.Printf("  %s\n", string(b))
	}

	if opts.Verbose && len(req.FullParams) > 0 {
		printSection("All Parameters")
		for _, k := range sortedKeys(req.FullParams) {
			printKV(k, req.FullParams[k], 1)
		}
	}
}

func printSection(title string) {
	fmt.Println()
	headerColor.Printf("┌ %s\n", title)
}

func printKV(key, value string, indent int) {
	prefix := strings.Repeat("  ", indent)
	labelColor.Printf("%s%s: ", prefix, key)
	valueColor.Println(value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintError prints an error message.
func PrintError(msg string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("Error:"), msg)
}
