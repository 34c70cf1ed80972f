package demoserver

import (
	"fmt"
	"net/url"
	"strings"
)

const homePage = `<!DOCTYPE html>
<html>
<head>
    <title>go2web demo</title>
    <style>body { font-family: sans-serif; }</style>
    <script src="/static/app.js"></script>
</head>
<body>
    <h1>Welcome to the go2web demo</h1>
    <img src="/static/logo.png" alt="logo">
    <p>This page is served over plain HTTP/1.1.</p>
    <ul>
        <li><a href="/json">JSON document</a></li>
        <li><a href="/plain">Plain text</a></li>
        <li><a href="/redirect/3">Three redirects</a></li>
    </ul>
    <script>console.log("never rendered");</script>
</body>
</html>`

const jsonDoc = `{"name":"go2web","features":["raw sockets","redirects","cache"],"version":1}`

const plainText = "plain text body\n  indentation is kept\n"

const relativeTarget = `<html><body><h2>Relative redirect target</h2><p>Resolved against the current directory.</p></body></html>`

// docsPage links relative to its own directory, /docs/.
const docsPage = `<html><body><h2>Docs</h2><p>Read the <a href="guide">Guide</a>.</p></body></html>`

const arrivedPage = `<html><body><h2>Arrived</h2><p>The redirect chain ended here.</p></body></html>`

// searchPage renders a results page shaped like DuckDuckGo's html frontend.
// The first entry is an ad; every organic link goes through the /l/ redirector.
func searchPage(host, query string, n int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><body>\n<div id=\"links\">\n")
	b.WriteString(`<div class="result result--ad"><a class="result__a" href="https://duckduckgo.com/y.js?ad_domain=ads.test">Sponsored</a></div>` + "\n")
	for i := 1; i <= n; i++ {
		target := fmt.Sprintf("https://result%d.test/%s", i, url.PathEscape(query))
		fmt.Fprintf(&b, `<div class="result"><h2><a class="result__a" href="//%s/l/?uddg=%s&amp;rut=%d">Result %d for %s</a></h2></div>`+"\n",
			host, url.QueryEscape(target), i, i, htmlEscape(query))
	}
	b.WriteString("</div>\n</body></html>")
	return b.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
