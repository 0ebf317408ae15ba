// package domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Modelos do Balancete ---

// CabecalhoBalancete contém os metadados extraídos do bloco de cabeçalho do relatório.
type CabecalhoBalancete struct {
	MesAno    string `json:"mes_ano"`
	Data      string `json:"data"`
	Consorcio string `json:"consorcio"`
	CNPJ      string `json:"cnpj"`
}

// LinhaBalancete representa uma conta do balancete, na ordem em que aparece no relatório.
type LinhaBalancete struct {
	Conta         string          `json:"conta"`
	Descricao     string          `json:"descricao"`
	SaldoAnterior decimal.Decimal `json:"saldo_anterior"`
	Debito        decimal.Decimal `json:"debito"`
	Credito       decimal.Decimal `json:"credito"`
	SaldoAtual    decimal.Decimal `json:"saldo_atual"`
}

// Balancete é o resultado do parser para um único arquivo.
type Balancete struct {
	Cabecalho CabecalhoBalancete `json:"cabecalho"`
	Linhas    []LinhaBalancete   `json:"linhas"`
}

// --- Modelos de processamento em lote ---

// StatusSucesso marca um arquivo convertido sem erros.
const StatusSucesso = "success"

// ArquivoProcessado descreve um arquivo convertido com sucesso.
type ArquivoProcessado struct {
	InputFile  string `json:"inputFile"`
	OutputFile string `json:"outputFile"`
	FileSize   int64  `json:"fileSize"`
	Status     string `json:"status"`
}

// ResultadoLote agrupa os sucessos e erros de uma requisição de processamento.
type ResultadoLote struct {
	BatchID        string              `json:"batchId"`
	ProcessedCount int                 `json:"processed_count"`
	ProcessedFiles []ArquivoProcessado `json:"processed_files"`
	Errors         []string            `json:"errors"`
	InputPath      string              `json:"inputPath"`
	OutputFolder   string              `json:"outputFolder"`
	ProcessedAt    time.Time           `json:"processedAt"`
}

// InfoArquivo contém os metadados de um arquivo no disco.
type InfoArquivo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Extension string    `json:"extension"`
	Modified  time.Time `json:"modified"`
}
