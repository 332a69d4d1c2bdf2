package main

import (
	"bytes"
	"flag"
	"html/template"
	"log"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/lemmi/compress"
	"github.com/pkg/errors"
	"github.com/raymondbutcher/tidyhtml"

	"github.com/pagemill/pagemill"
	"github.com/pagemill/pagemill/source"
)

var (
	DEBUG bool
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func HttpError(w http.ResponseWriter, code int, logErr error) {
	if DEBUG {
		switch err := logErr.(type) {
		case stackTracer:
			log.Print(err)
			log.Printf("%+v", err.StackTrace())
		default:
			log.Print(err)
		}
	} else {
		log.Print(logErr)
	}
	http.Error(w, http.StatusText(code), code)
}

const defaultLayout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<article>
{{.Body}}
</article>
</body>
</html>`

func parseLayout(dir string) (*template.Template, error) {
	if dir == "" {
		return template.New("main").Parse(defaultLayout)
	}
	tmpl, err := template.ParseGlob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse templates in %q", dir)
	}
	if tmpl.Lookup("main") == nil {
		return nil, errors.Errorf("no \"main\" template in %q", dir)
	}
	return tmpl, nil
}

// view is what the layout template renders.
type view struct {
	Title string
	Body  template.HTML
	Page  pagemill.Frontmatter
	Site  map[string]interface{}
}

// Handling of one content page: resolve, render, convert, wrap in the layout.
type pageHandler struct {
	store    *pagemill.Store
	src      pagemill.Source
	conv     *pagemill.Converter
	tmpl     *template.Template
	site     map[string]interface{}
	cacheDir string
}

// contentName maps the request path to a content identifier, applying the
// directory index convention against the local cache mirror.
func (h pageHandler) contentName(urlPath string) (string, error) {
	rel := strings.Trim(path.Clean(urlPath), "/")
	full := pagemill.ResolveFilePath(filepath.Join(h.cacheDir, filepath.FromSlash(rel)), "md")
	name, err := filepath.Rel(h.cacheDir, full)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %q", urlPath)
	}
	return filepath.ToSlash(name), nil
}

func (h pageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, err := h.contentName(r.URL.Path)
	if err != nil {
		HttpError(w, http.StatusBadRequest, err)
		return
	}

	raw, err := h.store.Resolve(r.Context(), name, h.src)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			HttpError(w, http.StatusNotFound, err)
		} else {
			HttpError(w, http.StatusInternalServerError, err)
		}
		return
	}

	doc, err := pagemill.RenderDocument(raw, h.site)
	if err != nil {
		HttpError(w, http.StatusInternalServerError, errors.Wrapf(err, "render failed: %q", name))
		return
	}

	conv := h.conv
	if doc.Page.Bool("unsafe") {
		conv = pagemill.NewConverter(false)
	}
	body, err := conv.ToHTML(doc.Body, pagemill.ModeBlock)
	if err != nil {
		HttpError(w, http.StatusInternalServerError, errors.Wrapf(err, "markdown failed: %q", name))
		return
	}
	title, err := conv.ToHTML(doc.Title, pagemill.ModeInline)
	if err != nil {
		HttpError(w, http.StatusInternalServerError, errors.Wrapf(err, "markdown failed: %q", name))
		return
	}

	buf := bytes.Buffer{}
	v := view{Title: title, Body: template.HTML(body), Page: doc.Page, Site: h.site}
	if err := h.tmpl.ExecuteTemplate(&buf, "main", v); err != nil {
		HttpError(w, http.StatusInternalServerError, errors.Wrapf(err, "template execution failed: %q", name))
		return
	}
	tbuf := bytes.Buffer{}
	if err := tidyhtml.Copy(&tbuf, &buf); err != nil {
		HttpError(w, http.StatusInternalServerError, errors.Wrapf(err, "tidyhtml failed: %q", name))
		return
	}
	w.Header().Set("Content-Type", "text/html")
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(tbuf.Bytes()))
}

func newMux(cfg config, h pageHandler) *http.ServeMux {
	mux := http.NewServeMux()
	if cfg.StaticDir != "" {
		staticHandler := pagemill.NewStaticHandler(http.Dir(cfg.StaticDir))
		mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))
		mux.Handle("/robots.txt", staticHandler)
		mux.Handle("/favicon.ico", staticHandler)
	}
	mux.Handle("/", h)
	return mux
}

func main() {
	configPath := flag.String("config", "pagemill.yaml", "path to the config file")
	flag.BoolVar(&DEBUG, "debug", false, "set debug output")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	src, err := cfg.contentSource()
	if err != nil {
		log.Fatal(err)
	}
	tmpl, err := parseLayout(cfg.Templates)
	if err != nil {
		log.Fatal(err)
	}

	h := pageHandler{
		store:    pagemill.NewStore(cfg.CacheDir, log.Default()),
		src:      src,
		conv:     pagemill.NewConverter(!cfg.Unsafe),
		tmpl:     tmpl,
		site:     cfg.Site,
		cacheDir: cfg.CacheDir,
	}

	ln, err := net.Listen(cfg.Network, cfg.Bind)
	if err != nil {
		log.Fatal(err)
	}
	defer ln.Close()
	if strings.HasPrefix(cfg.Network, "unix") {
		if err := os.Chmod(cfg.Bind, 0666); err != nil {
			log.Fatal(err)
		}
	}

	log.Println("Starting")
	if DEBUG {
		log.Println("bind: ", cfg.Bind)
		log.Println("network: ", cfg.Network)
		log.Println("cache dir: ", cfg.CacheDir)
		log.Println("source: ", cfg.Source.Type)
	}
	log.Fatal(http.Serve(ln, compress.New(newMux(cfg, h))))
}
