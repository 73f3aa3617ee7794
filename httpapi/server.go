// Package httpapi exposes a single PLC connection over a read/control REST
// API, grounded on the teacher's chi-based api.Router but scoped down to
// one CPU instead of a multi-PLC gateway.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yatesdr/gos7link/s7"
)

// Server wraps a single *s7.Client behind chi handlers. The client is
// serialized with a mutex: per SPEC_FULL.md §5, the engine itself does no
// internal locking because it assumes one exclusive owner, so any
// component fielding concurrent callers (this one included) must take
// that responsibility itself.
type Server struct {
	mu     sync.Mutex
	client *s7.Client
}

// NewServer builds a Server over an already-connected Client.
func NewServer(client *s7.Client) *Server {
	return &Server{client: client}
}

// Router builds the chi.Router exposing this Server's endpoints.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/read", s.handleRead)
	r.Post("/write", s.handleWrite)
	r.Get("/cpuinfo", s.handleCpuInfo)
	r.Get("/cpinfo", s.handleCpInfo)
	r.Get("/blocklist", s.handleBlockList)
	r.Get("/blockinfo/{type}/{number}", s.handleBlockInfo)
	r.Get("/tags/{address}", s.handleReadTag)
	r.Post("/tags/{address}", s.handleWriteTag)
	r.Post("/start", s.handleStart)
	r.Post("/restart", s.handleRestart)
	r.Post("/stop", s.handleStop)
	if s.client != nil {
		registry := prometheus.NewRegistry()
		registry.MustRegister(s.client.Metrics())
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	return r
}

// handleHealth is a bare liveness check: it reports the process is up and
// serving, independent of whether the PLC connection itself is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

var areaByName = map[string]s7.Area{
	"input":   s7.AreaProcessInput,
	"output":  s7.AreaProcessOutput,
	"merker":  s7.AreaMerker,
	"db":      s7.AreaDataBlock,
	"counter": s7.AreaCounter,
	"timer":   s7.AreaTimer,
}

var wordLengthByName = map[string]s7.WordLength{
	"bit":     s7.WLBit,
	"byte":    s7.WLByte,
	"char":    s7.WLChar,
	"word":    s7.WLWord,
	"int":     s7.WLInt,
	"dword":   s7.WLDWord,
	"dint":    s7.WLDInt,
	"real":    s7.WLReal,
	"counter": s7.WLCounter,
	"timer":   s7.WLTimer,
}

type readWriteArea struct {
	Area       string `json:"area"`
	DB         uint16 `json:"db,omitempty"`
	Start      int    `json:"start"`
	WordLength string `json:"wordLength"`
}

func (rw *readWriteArea) resolve() (s7.Area, s7.WordLength, error) {
	area, ok := areaByName[rw.Area]
	if !ok {
		return 0, 0, &s7.Error{Kind: s7.KindInvalidInput, Message: "unknown area: " + rw.Area}
	}
	wl, ok := wordLengthByName[rw.WordLength]
	if !ok {
		return 0, 0, &s7.Error{Kind: s7.KindInvalidInput, Message: "unknown wordLength: " + rw.WordLength}
	}
	return area, wl, nil
}

type readRequest struct {
	readWriteArea
	Amount int `json:"amount"`
}

type readResponseBody struct {
	Hex string `json:"hex"`
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	var req readRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	area, wl, err := req.resolve()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		s.writeError(w, http.StatusBadRequest, &s7.Error{Kind: s7.KindInvalidInput, Message: "amount must be positive"})
		return
	}
	buf := make([]byte, req.Amount)
	item := &s7.DataItem{Area: area, WordLength: wl, DBNumber: req.DB, Start: req.Start, Size: req.Amount, Buffer: buf}

	s.mu.Lock()
	err = s.client.ReadMultiVars([]*s7.DataItem{item})
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if item.Err != nil {
		s.writeError(w, http.StatusBadGateway, item.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, readResponseBody{Hex: hexString(buf)})
}

type writeRequest struct {
	readWriteArea
	Hex string `json:"hex"`
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	var req writeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	area, wl, err := req.resolve()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	buf, err := parseHexString(req.Hex)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	item := &s7.DataItem{Area: area, WordLength: wl, DBNumber: req.DB, Start: req.Start, Size: len(buf), Buffer: buf}

	s.mu.Lock()
	err = s.client.WriteMultiVars([]*s7.DataItem{item})
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if item.Err != nil {
		s.writeError(w, http.StatusBadGateway, item.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

type statusResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	CpuInfo   *s7.CpuInfo `json:"cpuInfo,omitempty"`
}

// handleStatus reports the CPU's run status plus its identity record. The
// identity read is best-effort: a CPU that refuses the SZL request still
// gets its run status reported.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status, err := s.client.PlcStatus()
	var info *s7.CpuInfo
	if err == nil {
		info, _ = s.client.CpuInfo()
	}
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, statusResponse{
		Status:    status.String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		CpuInfo:   info,
	})
}

func (s *Server) handleCpuInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	info, err := s.client.CpuInfo()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCpInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	info, err := s.client.CpInfo()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleBlockList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	counts, err := s.client.GetAgBlockList()
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

var blockTypeByName = map[string]s7.BlockType{
	"ob":  s7.BlockTypeOB,
	"db":  s7.BlockTypeDB,
	"sdb": s7.BlockTypeSDB,
	"fc":  s7.BlockTypeFC,
	"sfc": s7.BlockTypeSFC,
	"fb":  s7.BlockTypeFB,
	"sfb": s7.BlockTypeSFB,
}

func (s *Server) handleBlockInfo(w http.ResponseWriter, r *http.Request) {
	blockType, ok := blockTypeByName[chi.URLParam(r, "type")]
	if !ok {
		s.writeError(w, http.StatusBadRequest, &s7.Error{Kind: s7.KindInvalidInput, Message: "unknown block type"})
		return
	}
	number, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 32)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	info, err := s.client.GetAgBlockInfo(blockType, uint32(number))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

type tagResponse struct {
	Address string `json:"address"`
	Hex     string `json:"hex"`
}

func (s *Server) handleReadTag(w http.ResponseWriter, r *http.Request) {
	addrStr := chi.URLParam(r, "address")
	addr, err := s7.ParseTagAddress(addrStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	size := 1
	if q := r.URL.Query().Get("size"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, &s7.Error{Kind: s7.KindInvalidInput, Message: "invalid size query parameter"})
			return
		}
		size = n
	}
	buf := make([]byte, size)
	item := addr.DataItem(size, buf)

	s.mu.Lock()
	err = s.client.ReadMultiVars([]*s7.DataItem{item})
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if item.Err != nil {
		s.writeError(w, http.StatusBadGateway, item.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, tagResponse{Address: addrStr, Hex: hexString(buf)})
}

type writeTagRequest struct {
	Hex string `json:"hex"`
}

func (s *Server) handleWriteTag(w http.ResponseWriter, r *http.Request) {
	addrStr := chi.URLParam(r, "address")
	addr, err := s7.ParseTagAddress(addrStr)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	var req writeTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	buf, err := parseHexString(req.Hex)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	item := addr.DataItem(len(buf), buf)

	s.mu.Lock()
	err = s.client.WriteMultiVars([]*s7.DataItem{item})
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	if item.Err != nil {
		s.writeError(w, http.StatusBadGateway, item.Err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.client.Start()
	s.mu.Unlock()
	s.handleControlResult(w, err)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.client.Restart()
	s.mu.Unlock()
	s.handleControlResult(w, err)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.client.Stop()
	s.mu.Unlock()
	s.handleControlResult(w, err)
}

func (s *Server) handleControlResult(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func hexString(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0F]
	}
	return string(out)
}

func parseHexString(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, &s7.Error{Kind: s7.KindInvalidInput, Message: "hex string must have even length"}
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexDigit(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexDigit(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexDigit(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, &s7.Error{Kind: s7.KindInvalidInput, Message: "invalid hex character"}
	}
}
