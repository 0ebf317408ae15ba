package balancete

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"balancete-service/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/charmap"
)

// Codificações aceitas para os arquivos de entrada.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
	EncodingAuto   = "auto"
)

const extensaoEntrada = ".txt"

var (
	ErrCaminhoInvalido      = errors.New("caminho fornecido não é um arquivo nem uma pasta válida")
	ErrNenhumArquivoTxt     = errors.New("nenhum arquivo .txt encontrado na pasta selecionada")
	ErrArquivoNaoEncontrado = errors.New("arquivo não encontrado")
	ErrEncodingInvalido     = errors.New("conteúdo não corresponde à codificação configurada")
	ErrFormatoNaoSuportado  = errors.New("formato de saída não suportado")
	ErrEncodingNaoSuportado = errors.New("codificação de entrada não suportada")
)

// ValidEncoding informa se o nome de codificação é aceito pelo serviço.
func ValidEncoding(nome string) bool {
	switch nome {
	case EncodingUTF8, EncodingLatin1, EncodingAuto:
		return true
	}
	return false
}

// Service define a interface para o processamento de balancetes.
type Service interface {
	ProcessFile(inputPath, outputFolder string) (string, error)
	ProcessPath(ctx context.Context, inputPath, outputFolder string) (*domain.ResultadoLote, error)
	ConvertUpload(file io.Reader, formato string) ([]byte, string, error)
	Preview(file io.Reader) (domain.Balancete, error)
	FileInfo(path string) (*domain.InfoArquivo, error)
}

// Options ajusta o comportamento do serviço.
type Options struct {
	Encoding string
	// Workers limita quantos arquivos de uma pasta são convertidos ao mesmo
	// tempo. Com mais de um worker, entradas cujo cabeçalho gera o mesmo
	// "{consorcio}_{data}" disputam o mesmo destino: cada planilha é gravada
	// inteira, mas qual delas permanece é imprevisível.
	Workers int
}

type service struct {
	logger   *zap.Logger
	encoding string
	workers  int
	now      func() time.Time
}

// NewService cria uma nova instância do serviço de balancetes.
func NewService(logger *zap.Logger, opts Options) (Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Encoding == "" {
		opts.Encoding = EncodingUTF8
	}
	if !ValidEncoding(opts.Encoding) {
		return nil, fmt.Errorf("%w: %s", ErrEncodingNaoSuportado, opts.Encoding)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &service{
		logger:   logger,
		encoding: opts.Encoding,
		workers:  opts.Workers,
		now:      time.Now,
	}, nil
}

// ---------------------- leitura ----------------------

func (svc *service) decodificar(data []byte) (string, error) {
	switch svc.encoding {
	case EncodingLatin1:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodingInvalido, err)
		}
		return string(out), nil
	case EncodingAuto:
		if utf8.Valid(data) {
			return string(data), nil
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodingInvalido, err)
		}
		return string(out), nil
	default:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %s", ErrEncodingInvalido, EncodingUTF8)
		}
		return string(data), nil
	}
}

func (svc *service) lerBalancete(file io.Reader) (domain.Balancete, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return domain.Balancete{}, fmt.Errorf("erro ao ler arquivo: %w", err)
	}
	conteudo, err := svc.decodificar(data)
	if err != nil {
		return domain.Balancete{}, err
	}
	return Parse(conteudo)
}

// ---------------------- arquivo único ----------------------

// ProcessFile converte um .txt em planilha e devolve o caminho gerado.
func (svc *service) ProcessFile(inputPath, outputFolder string) (string, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("erro ao processar arquivo: %w", err)
	}
	defer f.Close()

	bal, err := svc.lerBalancete(f)
	if err != nil {
		return "", fmt.Errorf("erro ao processar arquivo: %w", err)
	}

	w := xlsxWriter{}
	var buf bytes.Buffer
	if err := w.Write(&buf, bal); err != nil {
		return "", fmt.Errorf("erro ao gerar planilha: %w", err)
	}

	destino := NomeArquivoSaida(bal.Cabecalho, w.Extensao())
	if outputFolder != "" {
		destino = filepath.Join(outputFolder, destino)
	}
	if err := gravarArquivo(destino, buf.Bytes()); err != nil {
		return "", fmt.Errorf("erro ao salvar planilha: %w", err)
	}

	svc.logger.Info("Balancete convertido",
		zap.String("input", inputPath),
		zap.String("output", destino),
		zap.Int("lines", len(bal.Linhas)))
	return destino, nil
}

// gravarArquivo escreve num temporário da mesma pasta e renomeia, para que o
// destino nunca fique com uma planilha parcial.
func gravarArquivo(destino string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(destino), ".balancete-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), destino)
}

// ---------------------- lote ----------------------

type resultadoItem struct {
	arquivo *domain.ArquivoProcessado
	erro    string
}

// ProcessPath aceita um .txt ou uma pasta com arquivos .txt. Erros de um
// arquivo ficam registrados no resultado e não interrompem os demais.
func (svc *service) ProcessPath(ctx context.Context, inputPath, outputFolder string) (*domain.ResultadoLote, error) {
	resultado := &domain.ResultadoLote{
		BatchID:        uuid.NewString(),
		ProcessedFiles: []domain.ArquivoProcessado{},
		Errors:         []string{},
		InputPath:      inputPath,
		OutputFolder:   outputFolder,
	}

	info, err := os.Stat(inputPath)
	switch {
	case err == nil && info.Mode().IsRegular():
		if !strings.EqualFold(filepath.Ext(inputPath), extensaoEntrada) {
			resultado.Errors = append(resultado.Errors,
				fmt.Sprintf("Arquivo %s não é um arquivo .txt", filepath.Base(inputPath)))
			break
		}
		svc.acumular(resultado, svc.processarItem(ctx, inputPath, outputFolder))

	case err == nil && info.IsDir():
		arquivos, err := filepath.Glob(filepath.Join(inputPath, "*"+extensaoEntrada))
		if err != nil {
			return nil, fmt.Errorf("erro ao listar pasta: %w", err)
		}
		if len(arquivos) == 0 {
			return nil, ErrNenhumArquivoTxt
		}
		for _, item := range svc.processarLote(ctx, arquivos, outputFolder) {
			svc.acumular(resultado, item)
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrCaminhoInvalido, inputPath)
	}

	resultado.ProcessedCount = len(resultado.ProcessedFiles)
	resultado.ProcessedAt = svc.now()

	svc.logger.Info("Lote processado",
		zap.String("batch_id", resultado.BatchID),
		zap.String("input", inputPath),
		zap.Int("processed", resultado.ProcessedCount),
		zap.Int("errors", len(resultado.Errors)))
	return resultado, nil
}

// processarLote respeita o limite de workers e preserva a ordem de entrada.
func (svc *service) processarLote(ctx context.Context, arquivos []string, outputFolder string) []resultadoItem {
	itens := make([]resultadoItem, len(arquivos))

	var g errgroup.Group
	g.SetLimit(svc.workers)
	for i, arquivo := range arquivos {
		g.Go(func() error {
			itens[i] = svc.processarItem(ctx, arquivo, outputFolder)
			return nil
		})
	}
	_ = g.Wait()

	return itens
}

func (svc *service) processarItem(ctx context.Context, arquivo, outputFolder string) resultadoItem {
	nome := filepath.Base(arquivo)
	if err := ctx.Err(); err != nil {
		return resultadoItem{erro: fmt.Sprintf("Erro ao processar %s: %v", nome, err)}
	}

	svc.logger.Debug("Processando balancete", zap.String("input", arquivo))
	saida, err := svc.ProcessFile(arquivo, outputFolder)
	if err != nil {
		svc.logger.Warn("Falha ao processar balancete", zap.String("input", arquivo), zap.Error(err))
		return resultadoItem{erro: fmt.Sprintf("Erro ao processar %s: %v", nome, err)}
	}

	var tamanho int64
	if info, err := os.Stat(arquivo); err == nil {
		tamanho = info.Size()
	}
	return resultadoItem{arquivo: &domain.ArquivoProcessado{
		InputFile:  arquivo,
		OutputFile: saida,
		FileSize:   tamanho,
		Status:     domain.StatusSucesso,
	}}
}

func (svc *service) acumular(resultado *domain.ResultadoLote, item resultadoItem) {
	if item.arquivo != nil {
		resultado.ProcessedFiles = append(resultado.ProcessedFiles, *item.arquivo)
		return
	}
	resultado.Errors = append(resultado.Errors, item.erro)
}

// ---------------------- upload e consulta ----------------------

// ConvertUpload converte o conteúdo enviado e devolve os bytes e o nome sugerido do arquivo.
func (svc *service) ConvertUpload(file io.Reader, formato string) ([]byte, string, error) {
	w, err := NewWriter(formato)
	if err != nil {
		return nil, "", err
	}

	bal, err := svc.lerBalancete(file)
	if err != nil {
		return nil, "", fmt.Errorf("erro ao processar arquivo: %w", err)
	}

	var buf bytes.Buffer
	if err := w.Write(&buf, bal); err != nil {
		return nil, "", fmt.Errorf("erro ao gerar arquivo de saída: %w", err)
	}
	return buf.Bytes(), NomeArquivoSaida(bal.Cabecalho, w.Extensao()), nil
}

// Preview devolve o balancete interpretado, sem gerar arquivo.
func (svc *service) Preview(file io.Reader) (domain.Balancete, error) {
	bal, err := svc.lerBalancete(file)
	if err != nil {
		return domain.Balancete{}, fmt.Errorf("erro ao processar arquivo: %w", err)
	}
	return bal, nil
}

// FileInfo retorna metadados de um arquivo ou pasta existente.
func (svc *service) FileInfo(path string) (*domain.InfoArquivo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrArquivoNaoEncontrado
		}
		return nil, fmt.Errorf("erro ao obter informações do arquivo: %w", err)
	}
	return &domain.InfoArquivo{
		Name:      filepath.Base(path),
		Path:      path,
		Size:      info.Size(),
		Extension: filepath.Ext(path),
		Modified:  info.ModTime(),
	}, nil
}
