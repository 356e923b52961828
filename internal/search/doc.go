// Package search provides the web search providers used by the web_search
// tool.
//
// Available providers:
//
//   - DuckDuckGo: free, no API key required (parses lite.duckduckgo.com)
//   - Brave: requires BRAVE_API_KEY
//   - Tavily: requires TAVILY_API_KEY
//
// Every provider returns at most the requested amount of results, most
// relevant first, as ranked by the upstream engine. Failures are reported
// as *RetrievalError.
package search
