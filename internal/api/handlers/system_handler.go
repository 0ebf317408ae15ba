package handlers

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Shutdown coordena o encerramento disparado por sinal do sistema ou por POST /shutdown.
type Shutdown struct {
	inProgress atomic.Bool
	once       sync.Once
	done       chan struct{}
}

// NewShutdown cria o coordenador de encerramento.
func NewShutdown() *Shutdown {
	return &Shutdown{done: make(chan struct{})}
}

// Trigger inicia o encerramento. Chamadas repetidas são ignoradas.
func (s *Shutdown) Trigger() {
	s.once.Do(func() {
		s.inProgress.Store(true)
		close(s.done)
	})
}

// Done fecha quando o encerramento foi solicitado.
func (s *Shutdown) Done() <-chan struct{} { return s.done }

// InProgress informa se o encerramento já começou.
func (s *Shutdown) InProgress() bool { return s.inProgress.Load() }

// SystemHandler expõe health check e encerramento.
type SystemHandler struct {
	service  string
	shutdown *Shutdown
}

// NewSystemHandler cria o handler de sistema.
func NewSystemHandler(service string, shutdown *Shutdown) *SystemHandler {
	return &SystemHandler{service: service, shutdown: shutdown}
}

// HandleHealth verifica se o servidor está funcionando.
func (h *SystemHandler) HandleHealth(c *gin.Context) {
	if h.shutdown.InProgress() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "shutting_down",
			"service":   h.service,
			"message":   "Servidor sendo finalizado",
			"timestamp": time.Now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   h.service,
		"message":   "Servidor funcionando",
		"timestamp": time.Now(),
	})
}

// HandleShutdown responde e então sinaliza o encerramento gracioso.
func (h *SystemHandler) HandleShutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "shutting_down",
		"service":   h.service,
		"message":   "Servidor sendo finalizado",
		"timestamp": time.Now(),
	})
	h.shutdown.Trigger()
}
