package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/bszet/vertretungsbot/model"
)

// planPattern matches plan document names; the capture group is the area
// tag that selects the normalization layout.
var planPattern = regexp.MustCompile(`vertretungsplan-([a-z-]+)\.pdf`)

// listingTimeLayout is the modification-time format of the listing page.
const listingTimeLayout = "02.01.2006, 15:04:05"

// listingPath is the directory listing of all plan documents.
const listingPath = "/index.php?dir=/Vertretungsplaene"

// CredentialSource supplies the current document-source login.
type CredentialSource interface {
	LatestCredential(ctx context.Context) (username, password string, err error)
}

// StatusError reports an HTTP request that the document source rejected.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d", e.URL, e.StatusCode)
}

// Client fetches the remote plan directory.
type Client struct {
	// BaseURL is the document source root, without a trailing slash.
	BaseURL string

	// Credentials supplies the basic-auth login for every request.
	Credentials CredentialSource

	// HTTPClient defaults to a client with a 30 second timeout.
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	username, password, err := c.Credentials.LatestCredential(ctx)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.SetBasicAuth(username, password)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// ListDocuments scrapes the directory listing and returns all plan
// documents with their modification times. Full-school plans ("*fs.pdf")
// are excluded.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	resp, err := c.get(ctx, c.BaseURL+listingPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	root, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}
	return parseListing(root)
}

// Fetch retrieves the raw bytes of the named document.
func (c *Client) Fetch(ctx context.Context, name string) ([]byte, error) {
	resp, err := c.get(ctx, c.BaseURL+"/"+strings.TrimPrefix(name, "/"))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", name, err)
	}
	return raw, nil
}

// Verify checks a candidate login against the document source. A rejected
// login returns false without an error; transport failures return an
// error.
func (c *Client) Verify(ctx context.Context, username, password string) (bool, error) {
	if len(username) > 20 || len(password) > 20 {
		return false, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL, nil)
	if err != nil {
		return false, fmt.Errorf("building verify request: %w", err)
	}
	req.SetBasicAuth(username, password)
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return false, fmt.Errorf("verifying credentials: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

// parseListing extracts plan documents from the listing page. Each plan is
// an anchor whose href matches planPattern; the enclosing table row
// carries the modification time in a cell with the FileListCellInfo class.
func parseListing(root *html.Node) ([]model.Document, error) {
	var docs []model.Document
	var err error

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if err != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if m := planPattern.FindStringSubmatch(href); m != nil && !strings.HasSuffix(href, "fs.pdf") {
				row := ancestor(n, "tr")
				if row == nil {
					err = fmt.Errorf("listing anchor %s has no enclosing row", href)
					return
				}
				info := strings.TrimSpace(textOfClass(row, "FileListCellInfo"))
				modified, parseErr := time.ParseInLocation(listingTimeLayout, info, time.Local)
				if parseErr != nil {
					err = fmt.Errorf("parsing modification time %q of %s: %w", info, href, parseErr)
					return
				}
				docs = append(docs, model.Document{Name: href, Area: m[1], LastModified: modified})
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)
	return docs, err
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func ancestor(n *html.Node, name string) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == name {
			return p
		}
	}
	return nil
}

// textOfClass returns the text content of the first descendant carrying
// the given class.
func textOfClass(n *html.Node, class string) string {
	if n.Type == html.ElementNode {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return textContent(n)
			}
		}
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if text := textOfClass(child, class); text != "" {
			return text
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}
