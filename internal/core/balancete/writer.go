package balancete

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"balancete-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Formatos de saída suportados.
const (
	FormatoXLSX = "xlsx"
	FormatoCSV  = "csv"
)

const (
	nomePlanilha       = "Balancete"
	linhaTitulos       = 7
	formatoMilharBR    = 4 // "#,##0.00" embutido do Excel
	sufixoArquivoSaida = "_BALANCETE"
)

var titulosColunas = []string{"Conta", "Descricao", "Saldo Anterior", "Débito", "Crédito", "Saldo Atual"}

// Writer serializa um balancete já processado.
type Writer interface {
	Extensao() string
	Write(w io.Writer, b domain.Balancete) error
}

// NewWriter devolve o writer do formato pedido. Formato vazio equivale a xlsx.
func NewWriter(formato string) (Writer, error) {
	switch strings.ToLower(strings.TrimSpace(formato)) {
	case "", FormatoXLSX:
		return xlsxWriter{}, nil
	case FormatoCSV:
		return csvWriter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormatoNaoSuportado, formato)
	}
}

// NomeArquivoSaida monta "{consorcio}_{data}_BALANCETE{ext}" trocando "/" por "-".
func NomeArquivoSaida(cab domain.CabecalhoBalancete, extensao string) string {
	nome := fmt.Sprintf("%s_%s%s%s", cab.Consorcio, cab.Data, sufixoArquivoSaida, extensao)
	return strings.ReplaceAll(nome, "/", "-")
}

// ---------------------- xlsx ----------------------

type xlsxWriter struct{}

func (xlsxWriter) Extensao() string { return ".xlsx" }

func (xlsxWriter) Write(w io.Writer, b domain.Balancete) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), nomePlanilha); err != nil {
		return fmt.Errorf("erro ao nomear planilha: %w", err)
	}

	cab := b.Cabecalho
	celulas := []struct {
		ref   string
		valor string
	}{
		{"A1", "Balancete Analítico"},
		{"A2", cab.Consorcio},
		{"A3", "CNPJ:" + cab.CNPJ},
		{"E1", "Folha:"},
		{"F1", "000001"},
		{"E2", "Data:"},
		{"F2", cab.Data},
		{"E3", "Mes/Ano:"},
		{"F3", cab.MesAno},
	}
	for _, c := range celulas {
		if err := f.SetCellStr(nomePlanilha, c.ref, c.valor); err != nil {
			return err
		}
	}

	larguras := []struct {
		coluna  string
		largura float64
	}{
		{"A", 15}, {"B", 60}, {"C", 20}, {"D", 20}, {"E", 20}, {"F", 20},
	}
	for _, l := range larguras {
		if err := f.SetColWidth(nomePlanilha, l.coluna, l.coluna, l.largura); err != nil {
			return err
		}
	}

	estiloTitulo, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	estiloValor, err := f.NewStyle(&excelize.Style{NumFmt: formatoMilharBR})
	if err != nil {
		return err
	}

	inicioTitulos, _ := excelize.CoordinatesToCellName(1, linhaTitulos)
	if err := f.SetSheetRow(nomePlanilha, inicioTitulos, &titulosColunas); err != nil {
		return err
	}
	fimTitulos, _ := excelize.CoordinatesToCellName(len(titulosColunas), linhaTitulos)
	if err := f.SetCellStyle(nomePlanilha, inicioTitulos, fimTitulos, estiloTitulo); err != nil {
		return err
	}

	for i, l := range b.Linhas {
		linha := linhaTitulos + 1 + i
		celula, _ := excelize.CoordinatesToCellName(1, linha)
		valores := []interface{}{
			l.Conta,
			l.Descricao,
			l.SaldoAnterior.InexactFloat64(),
			l.Debito.InexactFloat64(),
			l.Credito.InexactFloat64(),
			l.SaldoAtual.InexactFloat64(),
		}
		if err := f.SetSheetRow(nomePlanilha, celula, &valores); err != nil {
			return fmt.Errorf("erro ao escrever linha %d: %w", linha, err)
		}
	}

	if n := len(b.Linhas); n > 0 {
		inicio, _ := excelize.CoordinatesToCellName(3, linhaTitulos+1)
		fim, _ := excelize.CoordinatesToCellName(6, linhaTitulos+n)
		if err := f.SetCellStyle(nomePlanilha, inicio, fim, estiloValor); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// ---------------------- csv ----------------------

type csvWriter struct{}

func (csvWriter) Extensao() string { return ".csv" }

// Write gera CSV com ";" em Windows-1252, como os demais conversores do escritório.
func (csvWriter) Write(w io.Writer, b domain.Balancete) error {
	encoder := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	tw := transform.NewWriter(w, encoder)
	writer := csv.NewWriter(tw)
	writer.Comma = ';'

	if err := writer.Write(titulosColunas); err != nil {
		return err
	}
	for _, l := range b.Linhas {
		record := []string{
			l.Conta,
			l.Descricao,
			formatarBRL(l.SaldoAnterior),
			formatarBRL(l.Debito),
			formatarBRL(l.Credito),
			formatarBRL(l.SaldoAtual),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return tw.Close()
}

// formatarBRL formata com separador de milhar "." e duas casas após ",".
func formatarBRL(d decimal.Decimal) string {
	d = d.Round(2)
	inteiro, frac, _ := strings.Cut(d.Abs().StringFixed(2), ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range inteiro {
		if i > 0 && (len(inteiro)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}
