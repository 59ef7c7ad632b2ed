package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dannbuckley/intcode/types"
	"github.com/dannbuckley/intcode/vm"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	defaultCacheSize = 128
	defaultStepLimit = 10_000_000
)

type ServerConfig struct {
	ListenerAddr string
	Logger       *zap.Logger
	// parsed programs kept in memory
	CacheSize int
	// instructions allowed per request, negative for no limit
	StepLimit int64
}

type Server struct {
	ServerConfig

	echo     *echo.Echo
	programs *lru.Cache
	sessions *sessionStore
	registry *prometheus.Registry
	metrics  *metrics

	logger *zap.Logger
}

func NewServer(config ServerConfig) (*Server, error) {
	if config.Logger == nil {
		config.Logger = zap.L()
	}
	if config.CacheSize <= 0 {
		config.CacheSize = defaultCacheSize
	}
	if config.StepLimit == 0 {
		config.StepLimit = defaultStepLimit
	}
	if config.StepLimit < 0 {
		config.StepLimit = 0
	}

	programs, err := lru.New(config.CacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "program cache")
	}
	registry := prometheus.NewRegistry()
	m, err := newMetrics(registry)
	if err != nil {
		return nil, errors.Wrap(err, "metrics")
	}

	s := &Server{
		ServerConfig: config,
		echo:         echo.New(),
		programs:     programs,
		sessions:     newSessionStore(),
		registry:     registry,
		metrics:      m,
		logger:       config.Logger.Named("api"),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true

	s.echo.POST("/run", s.handleRun)
	s.echo.POST("/sessions", s.handleCreateSession)
	s.echo.POST("/sessions/:id/input", s.handleInput)
	s.echo.GET("/sessions/:id/memory/:addr", s.handleGetMemory)
	s.echo.DELETE("/sessions/:id", s.handleDeleteSession)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return s, nil
}

// Handler exposes the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	s.logger.Info("api server starting",
		zap.String("addr", s.ListenerAddr))
	err := s.echo.Start(s.ListenerAddr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener, then the session worker.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	s.sessions.close()
	return err
}

// program parses text, serving repeated programs from the cache.
func (s *Server) program(text string) ([]int64, error) {
	key := types.SumHash([]byte(text))
	if v, ok := s.programs.Get(key); ok {
		s.metrics.cacheHits.Inc()
		return v.([]int64), nil
	}

	program, err := vm.ParseProgram(text)
	if err != nil {
		return nil, err
	}
	s.programs.Add(key, program)
	return program, nil
}

func (s *Server) newVM(program, inputs []int64) *vm.VM {
	return vm.NewVM(program, inputs,
		vm.LoggerOpt(s.logger),
		vm.StepLimitOpt(s.StepLimit),
	)
}

// run executes until the vm blocks and records the outcome.
func (s *Server) run(endpoint string, m *vm.VM) (vm.Status, []int64, error) {
	before := m.InstructionCount()
	status, out, err := m.RunUntilBlocked()

	s.metrics.runs.WithLabelValues(endpoint).Inc()
	s.metrics.instructions.Add(float64(m.InstructionCount() - before))
	if err != nil {
		s.metrics.failures.WithLabelValues(errorKind(err)).Inc()
	}
	return status, out, err
}

func (s *Server) handleRun(ectx echo.Context) error {
	var req RunRequest
	if err := ectx.Bind(&req); err != nil {
		return badRequest(ectx, err)
	}
	program, err := s.program(req.Program)
	if err != nil {
		return badRequest(ectx, err)
	}

	m := s.newVM(program, req.Inputs)
	for addr, v := range req.Patches {
		if err := m.WriteMemory(addr, v); err != nil {
			return badRequest(ectx, err)
		}
	}

	status, out, err := s.run("run", m)
	if err != nil {
		return unprocessable(ectx, err)
	}
	mem0, err := m.ReadMemory(0)
	if err != nil {
		return unprocessable(ectx, err)
	}

	return ectx.JSON(http.StatusOK, RunResponse{
		Status:       status.String(),
		Outputs:      out,
		Memory0:      mem0,
		Instructions: m.InstructionCount(),
	})
}

func (s *Server) handleCreateSession(ectx echo.Context) error {
	var req CreateSessionRequest
	if err := ectx.Bind(&req); err != nil {
		return badRequest(ectx, err)
	}
	program, err := s.program(req.Program)
	if err != nil {
		return badRequest(ectx, err)
	}

	id := uuid.NewString()
	m := s.newVM(program, req.Inputs)

	var (
		status vm.Status
		out    []int64
		runErr error
	)
	err = s.sessions.do(ectx.Request().Context(), func(sessions map[string]*vm.VM) {
		status, out, runErr = s.run("sessions", m)
		if runErr == nil {
			sessions[id] = m
			s.metrics.sessions.Set(float64(len(sessions)))
		}
	})
	if err != nil {
		return unavailable(ectx, err)
	}
	if runErr != nil {
		return unprocessable(ectx, runErr)
	}

	s.logger.Debug("session created", zap.String("id", id), zap.Stringer("status", status))
	return ectx.JSON(http.StatusCreated, SessionResponse{
		ID:      id,
		Status:  status.String(),
		Outputs: out,
	})
}

func (s *Server) handleInput(ectx echo.Context) error {
	id := ectx.Param("id")
	var req InputRequest
	if err := ectx.Bind(&req); err != nil {
		return badRequest(ectx, err)
	}

	var (
		found  bool
		status vm.Status
		out    []int64
		runErr error
	)
	err := s.sessions.do(ectx.Request().Context(), func(sessions map[string]*vm.VM) {
		m, ok := sessions[id]
		if !ok {
			return
		}
		found = true
		m.SupplyInput(req.Values...)
		status, out, runErr = s.run("input", m)
	})
	if err != nil {
		return unavailable(ectx, err)
	}
	if !found {
		return notFound(ectx, id)
	}
	if runErr != nil {
		return unprocessable(ectx, runErr)
	}

	return ectx.JSON(http.StatusOK, SessionResponse{
		ID:      id,
		Status:  status.String(),
		Outputs: out,
	})
}

func (s *Server) handleGetMemory(ectx echo.Context) error {
	id := ectx.Param("id")
	addr, err := strconv.ParseInt(ectx.Param("addr"), 10, 64)
	if err != nil {
		return badRequest(ectx, err)
	}

	var (
		found   bool
		value   int64
		readErr error
	)
	err = s.sessions.do(ectx.Request().Context(), func(sessions map[string]*vm.VM) {
		m, ok := sessions[id]
		if !ok {
			return
		}
		found = true
		value, readErr = m.ReadMemory(addr)
	})
	if err != nil {
		return unavailable(ectx, err)
	}
	if !found {
		return notFound(ectx, id)
	}
	if readErr != nil {
		return badRequest(ectx, readErr)
	}

	return ectx.JSON(http.StatusOK, MemoryResponse{
		Addr:  addr,
		Value: value,
	})
}

func (s *Server) handleDeleteSession(ectx echo.Context) error {
	id := ectx.Param("id")

	var found bool
	err := s.sessions.do(ectx.Request().Context(), func(sessions map[string]*vm.VM) {
		_, found = sessions[id]
		delete(sessions, id)
		s.metrics.sessions.Set(float64(len(sessions)))
	})
	if err != nil {
		return unavailable(ectx, err)
	}
	if !found {
		return notFound(ectx, id)
	}
	return ectx.NoContent(http.StatusNoContent)
}

func badRequest(ectx echo.Context, err error) error {
	return ectx.JSON(http.StatusBadRequest, ErrorResponse{
		Error: err.Error(),
		Kind:  errorKind(err),
	})
}

// unprocessable reports a program that faulted or ran out of steps.
func unprocessable(ectx echo.Context, err error) error {
	return ectx.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error: err.Error(),
		Kind:  errorKind(err),
	})
}

func notFound(ectx echo.Context, id string) error {
	return ectx.JSON(http.StatusNotFound, ErrorResponse{
		Error: "unknown session " + id,
	})
}

func unavailable(ectx echo.Context, err error) error {
	return ectx.JSON(http.StatusServiceUnavailable, ErrorResponse{
		Error: err.Error(),
	})
}
