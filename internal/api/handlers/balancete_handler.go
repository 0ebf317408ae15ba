package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"balancete-service/internal/api/responses"
	"balancete-service/internal/core/balancete"

	"github.com/gin-gonic/gin"
)

const operacaoBalancete = "balancete"

// BalanceteHandler lida com as requisições da API relacionadas a balancetes.
type BalanceteHandler struct {
	service          balancete.Service
	defaultOutputDir string
	maxUploadBytes   int64
}

// NewBalanceteHandler cria um novo handler de balancetes.
func NewBalanceteHandler(service balancete.Service, defaultOutputDir string, maxUploadBytes int64) *BalanceteHandler {
	return &BalanceteHandler{
		service:          service,
		defaultOutputDir: defaultOutputDir,
		maxUploadBytes:   maxUploadBytes,
	}
}

// ProcessFileRequest é o corpo de POST /process-file.
type ProcessFileRequest struct {
	InputPath    string `json:"inputPath"`
	OutputFolder string `json:"outputFolder"`
	Operation    string `json:"operation"`
}

// FileInfoRequest é o corpo de POST /get-file-info.
type FileInfoRequest struct {
	FilePath string `json:"filePath"`
}

// HandleProcessFile processa um arquivo .txt ou todos os .txt de uma pasta no disco local.
func (h *BalanceteHandler) HandleProcessFile(c *gin.Context) {
	var req ProcessFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Dados não fornecidos")
		return
	}

	if req.OutputFolder == "" {
		req.OutputFolder = h.defaultOutputDir
	}
	if req.InputPath == "" || req.OutputFolder == "" {
		responses.Error(c, http.StatusBadRequest, "Caminho do arquivo/pasta e pasta de saída são obrigatórios")
		return
	}
	if req.Operation == "" {
		req.Operation = operacaoBalancete
	}
	if req.Operation != operacaoBalancete {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Operação não suportada: %s", req.Operation))
		return
	}

	if _, err := os.Stat(req.InputPath); err != nil {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Caminho não encontrado: %s", req.InputPath))
		return
	}
	if _, err := os.Stat(req.OutputFolder); err != nil {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Pasta de saída não encontrada: %s", req.OutputFolder))
		return
	}

	result, err := h.service.ProcessPath(c.Request.Context(), req.InputPath, req.OutputFolder)
	if err != nil {
		if errors.Is(err, balancete.ErrNenhumArquivoTxt) || errors.Is(err, balancete.ErrCaminhoInvalido) {
			responses.Error(c, http.StatusUnprocessableEntity, "Erro ao processar arquivo(s)", err.Error())
			return
		}
		responses.Error(c, http.StatusInternalServerError, "Erro ao processar arquivo(s)", err.Error())
		return
	}

	responses.Success(c, result, fmt.Sprintf("%d arquivo(s) processado(s) com sucesso!", result.ProcessedCount))
}

// HandleFileInfo retorna informações sobre um arquivo.
func (h *BalanceteHandler) HandleFileInfo(c *gin.Context) {
	var req FileInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FilePath == "" {
		responses.Error(c, http.StatusBadRequest, "Arquivo não encontrado")
		return
	}

	info, err := h.service.FileInfo(req.FilePath)
	if err != nil {
		if errors.Is(err, balancete.ErrArquivoNaoEncontrado) {
			responses.Error(c, http.StatusBadRequest, "Arquivo não encontrado")
			return
		}
		responses.Error(c, http.StatusInternalServerError, "Erro ao obter informações do arquivo", err.Error())
		return
	}

	responses.Success(c, info, "")
}

// HandleBalanceteConversion converte um balancete enviado e devolve a planilha (ou CSV).
func (h *BalanceteHandler) HandleBalanceteConversion(c *gin.Context) {
	fileHeader, ok := h.uploadFile(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de balancete")
		return
	}
	defer file.Close()

	output, fileName, err := h.service.ConvertUpload(file, c.PostForm("format"))
	if err != nil {
		if errors.Is(err, balancete.ErrFormatoNaoSuportado) {
			responses.Error(c, http.StatusBadRequest, "Formato de saída não suportado", err.Error())
			return
		}
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao processar o arquivo", err.Error())
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if strings.HasSuffix(fileName, ".csv") {
		contentType = "text/csv; charset=windows-1252"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, output)
}

// HandleBalancetePreview devolve as linhas interpretadas em JSON.
func (h *BalanceteHandler) HandleBalancetePreview(c *gin.Context) {
	fileHeader, ok := h.uploadFile(c)
	if !ok {
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo de balancete")
		return
	}
	defer file.Close()

	bal, err := h.service.Preview(file)
	if err != nil {
		responses.Error(c, http.StatusUnprocessableEntity, "Erro ao processar o arquivo", err.Error())
		return
	}

	responses.Success(c, bal, fmt.Sprintf("%d linha(s) interpretada(s)", len(bal.Linhas)))
}

// folgaMultipart cobre boundaries, cabeçalhos das partes e campos de texto.
const folgaMultipart = 64 << 10

// uploadFile valida o campo "balanceteFile" do formulário multipart.
// Corpos acima do limite são recusados antes de serem lidos.
func (h *BalanceteHandler) uploadFile(c *gin.Context) (*multipart.FileHeader, bool) {
	if h.maxUploadBytes > 0 {
		limite := h.maxUploadBytes + folgaMultipart
		if c.Request.ContentLength > limite {
			responses.Error(c, http.StatusRequestEntityTooLarge, "Arquivo excede o tamanho máximo permitido")
			return nil, false
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limite)
	}

	fileHeader, err := c.FormFile("balanceteFile")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			responses.Error(c, http.StatusRequestEntityTooLarge, "Arquivo excede o tamanho máximo permitido")
			return nil, false
		}
		responses.Error(c, http.StatusBadRequest, "Arquivo de balancete (.txt) não encontrado ou inválido")
		return nil, false
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".txt" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo não suportada: %s", ext))
		return nil, false
	}
	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		responses.Error(c, http.StatusRequestEntityTooLarge, "Arquivo excede o tamanho máximo permitido")
		return nil, false
	}
	return fileHeader, true
}
