// Package query implements the assistant's query pipeline: free text in,
// composed answer out.
//
// The pipeline has two stages. Classification turns the question into a
// QueryIntent, via the oracle when possible and a deterministic keyword
// cascade when not. Dispatch gates the intent through the permission matrix
// and runs exactly one category handler, which fetches from at most one data
// service and composes the final QueryResponse.
//
// Everything here is stateless per request: no caches, no cross-request
// state, no session memory. Correctness rests on that.
package query

import (
	"github.com/calebward/aurum/internal/aurum/nlp"
)

// QueryTypeError is the queryType reported when the pipeline itself failed
// (as opposed to a permission denial or an empty result).
const QueryTypeError = "error"

// Row is one flat key/value record in a response.
type Row map[string]string

// QueryResponse is the consumer-facing answer contract.
//
// NaturalLanguageResponse is always present and never empty. Results is
// empty on denial or error. SQLQuery is a human-readable descriptor of the
// underlying fetch, present only when a real data fetch occurred; it is for
// transparency and debugging, never authoritative.
type QueryResponse struct {
	NaturalLanguageResponse string `json:"naturalLanguageResponse"`
	QueryType               string `json:"queryType"`
	Results                 []Row  `json:"results"`
	SQLQuery                string `json:"sqlQuery,omitempty"`
}

func newResponse(category nlp.Category, text string) *QueryResponse {
	return &QueryResponse{
		NaturalLanguageResponse: text,
		QueryType:               string(category),
		Results:                 []Row{},
	}
}

// denialResponse wraps permission guidance in a well-formed response with no
// rows.
func denialResponse(category nlp.Category, guidance string) *QueryResponse {
	return newResponse(category, guidance)
}

// apologyResponse is returned when a downstream fetch failed. The failure is
// local to the request; the caller sees a readable sentence, never an error
// code.
func apologyResponse(category nlp.Category) *QueryResponse {
	return newResponse(category,
		"Sorry, I couldn't retrieve that information right now. Please try again in a moment.")
}
