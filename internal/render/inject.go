package render

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"isitchristmas-screenshot/internal/geo"
)

// The target page embeds the server-detected visitor country as a literal
// in its main document. Rewriting it is what actually makes the page render
// for the requested country; the locale/timezone emulation only covers the
// client-side signals.
var countryVarPattern = regexp.MustCompile(`var country = ["'][A-Z]{2}["'];`)

func rewriteCountry(body []byte, country geo.CountryCode) []byte {
	replacement := fmt.Sprintf(`var country = "%s";`, country)
	return countryVarPattern.ReplaceAll(body, []byte(replacement))
}

// enableInterception pauses main-document responses so their bodies can be
// rewritten before the page sees them. Subresources load untouched.
func enableInterception() chromedp.Action {
	return fetch.Enable().WithPatterns([]*fetch.RequestPattern{{
		URLPattern:   "*",
		ResourceType: network.ResourceTypeDocument,
		RequestStage: fetch.RequestStageResponse,
	}})
}

// listenForDocuments registers the interception handler on the session's
// target. Paused responses must be resolved from a separate goroutine or
// the event loop deadlocks.
func listenForDocuments(taskCtx context.Context, country geo.CountryCode, logger *zap.Logger) {
	chromedp.ListenTarget(taskCtx, func(ev any) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go resolvePaused(taskCtx, paused, country, logger)
	})
}

func resolvePaused(taskCtx context.Context, ev *fetch.EventRequestPaused, country geo.CountryCode, logger *zap.Logger) {
	c := chromedp.FromContext(taskCtx)
	ectx := cdp.WithExecutor(taskCtx, c.Target)

	// Redirects and failures have no body to rewrite.
	if ev.ResponseStatusCode < 200 || ev.ResponseStatusCode >= 300 {
		if err := fetch.ContinueResponse(ev.RequestID).Do(ectx); err != nil {
			logger.Debug("continue response failed", zap.Error(err))
		}
		return
	}

	body, err := fetch.GetResponseBody(ev.RequestID).Do(ectx)
	if err != nil {
		logger.Warn("read document body failed", zap.String("url", ev.Request.URL), zap.Error(err))
		if cerr := fetch.ContinueResponse(ev.RequestID).Do(ectx); cerr != nil {
			logger.Debug("continue response failed", zap.Error(cerr))
		}
		return
	}

	rewritten := rewriteCountry(body, country)
	err = fetch.FulfillRequest(ev.RequestID, ev.ResponseStatusCode).
		WithResponseHeaders(fulfillHeaders(ev.ResponseHeaders, len(rewritten))).
		WithBody(base64.StdEncoding.EncodeToString(rewritten)).
		Do(ectx)
	if err != nil {
		logger.Warn("fulfill rewritten document failed", zap.String("url", ev.Request.URL), zap.Error(err))
	}
}

// fulfillHeaders rebuilds the origin's response headers for the rewritten
// body. GetResponseBody hands back the decoded document, so the origin's
// Content-Encoding no longer describes what we fulfill with and a stale
// Content-Length would make Chrome reject the body.
func fulfillHeaders(headers []*fetch.HeaderEntry, bodyLen int) []*fetch.HeaderEntry {
	out := make([]*fetch.HeaderEntry, 0, len(headers)+1)
	for _, h := range headers {
		switch strings.ToLower(h.Name) {
		case "content-encoding", "content-length":
			continue
		}
		out = append(out, h)
	}
	return append(out, &fetch.HeaderEntry{
		Name:  "Content-Length",
		Value: strconv.Itoa(bodyLen),
	})
}
