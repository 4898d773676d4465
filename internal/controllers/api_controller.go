package controllers

import (
	"encoding/base64"
	"net/http"
	"seedvault/internal/providers"
	"seedvault/internal/seed"
	"seedvault/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

// Compressed seeds are capped at 50 MiB uncompressed; allow headroom for
// base64 and JSON framing.
const maxRequestBodySize = 80 << 20

type ApiController struct {
	logger  providers.Logger
	service services.SeedServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.SeedServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type storeSeedRequest struct {
	// Data is the raw seed payload, base64 encoded for JSON transport.
	Data                    string    `json:"data"`
	Signature               string    `json:"signature"`
	Milestone               int       `json:"milestone"`
	SeedDate                time.Time `json:"seed_date"`
	FetchTime               time.Time `json:"fetch_time"`
	SessionCountry          string    `json:"session_country"`
	PermanentCountry        string    `json:"permanent_country"`
	PermanentCountryVersion string    `json:"permanent_country_version"`
}

type resolveResponse struct {
	Result       string `json:"result"`
	Data         string `json:"data,omitempty"`
	Signature    string `json:"signature,omitempty"`
	FromSafeSeed bool   `json:"from_safe_seed,omitempty"`
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) status(w http.ResponseWriter, kind string) {
	ac.serveFromCacheOrCompute(w, "status:"+kind, func() (any, error) {
		return ac.service.Status(kind)
	})
}

func (ac *ApiController) LatestStatus(w http.ResponseWriter, _ *http.Request) {
	ac.status(w, services.LatestSeed)
}

func (ac *ApiController) SafeStatus(w http.ResponseWriter, _ *http.Request) {
	ac.status(w, services.SafeSeed)
}

func (ac *ApiController) ResolveSeed(w http.ResponseWriter, _ *http.Request) {
	resolved := ac.service.ResolveLatest()
	resp := resolveResponse{
		Result:       resolved.Result.String(),
		FromSafeSeed: resolved.FromSafeSeed,
	}
	if resolved.Result == seed.LoadSuccess {
		resp.Data = base64.StdEncoding.EncodeToString([]byte(resolved.Data))
		resp.Signature = resolved.Signature
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) storeSeed(w http.ResponseWriter, r *http.Request, kind string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var req storeSeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	err = ac.service.StoreSeed(kind, services.StoreSeedInput{
		Payload:                 payload,
		Signature:               req.Signature,
		Milestone:               req.Milestone,
		SeedDate:                req.SeedDate,
		FetchTime:               req.FetchTime,
		SessionCountry:          req.SessionCountry,
		PermanentCountry:        req.PermanentCountry,
		PermanentCountryVersion: req.PermanentCountryVersion,
	})
	if err != nil {
		ac.logger.Errorf(providers.TypeSeed, "Failed to store %s seed: %s", kind, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Del("status:" + kind)
	w.WriteHeader(http.StatusCreated)
}

func (ac *ApiController) StoreLatest(w http.ResponseWriter, r *http.Request) {
	ac.storeSeed(w, r, services.LatestSeed)
}

func (ac *ApiController) StoreSafe(w http.ResponseWriter, r *http.Request) {
	ac.storeSeed(w, r, services.SafeSeed)
}

func (ac *ApiController) clearSeed(w http.ResponseWriter, kind string) {
	if err := ac.service.ClearSeed(kind); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	ac.cache.Del("status:" + kind)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ClearLatest(w http.ResponseWriter, _ *http.Request) {
	ac.clearSeed(w, services.LatestSeed)
}

func (ac *ApiController) ClearSafe(w http.ResponseWriter, _ *http.Request) {
	ac.clearSeed(w, services.SafeSeed)
}
