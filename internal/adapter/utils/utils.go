package utils

import (
	"net/http"
	"strings"
	"sync"

	_ "github.com/akolanti/DocChatAPI/cmd/api/docs"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/http-swagger"
)

var once sync.Once
var router *chi.Mux

func GetNewUUID() string {
	return uuid.New().String()
}

// ShortUUID returns the first length hex chars of a fresh uuid, used as the
// discriminator in session prefixes.
func ShortUUID(length int) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	if length > len(id) {
		length = len(id)
	}
	return id[:length]
}

// NormalizeText lowercases, trims and collapses whitespace. The cache layer and
// the chunk identity fingerprint both depend on this being deterministic and
// idempotent, and on read and write sides applying the exact same function.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(text))), " ")
}

type RouterClient struct {
	Router *chi.Mux
}

func GetChiURLParam(request *http.Request, key string) string {
	return chi.URLParam(request, key)
}

func GetRouter() RouterClient {
	once.Do(func() {
		router = chi.NewRouter()
		InitSwagger(router)
		//register prometheus
		router.Handle("/metrics", promhttp.Handler())
	})

	return RouterClient{Router: router}
}

func InitSwagger(r *chi.Mux) {
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
