package balancete

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

// linhaRelatorio monta uma linha no layout do relatório: conta/descrição
// seguida das quatro colunas de valores (19, 19, 17 e 19 caracteres).
func linhaRelatorio(contaDescricao, anterior, debito, credito, atual string) string {
	return fmt.Sprintf("%-30s%19s%19s%17s%19s", contaDescricao, anterior, debito, credito, atual)
}

func cabecalhoRelatorio(consorcio, data string) string {
	return strings.Join([]string{
		"Balancete Analitico                                                          Folha: 000001",
		consorcio + "   Data: " + data,
		"CNPJ: 12.345.678/0001-99   Insc. Estadual: isento",
		"Mes/Ano: 05/2024",
		"CONTA / DESCRICAO              SALDO ANTERIOR             DEBITO          CREDITO        SALDO ATUAL",
	}, "\n")
}

// relatorioExemplo tem duas páginas, régua de traços, rodapé e linhas após o TOTAL DO ATIVO.
func relatorioExemplo(consorcio string) string {
	return strings.Join([]string{
		cabecalhoRelatorio(consorcio, "30/05/2024"),
		separadorPagina,
		linhaRelatorio("1 - ATIVO", "10.000,00 D", "2.500,50", "1.000,25", "11.500,25 D"),
		linhaRelatorio("(00011) - Caixa Geral - Matriz", "1.234,56 D", "0,00", "0,00", "1.234,56 C"),
		"",
		"Emitido pelo sistema contabil em 30/05/2024 as 10:00                          Folha: 000001",
		separadorPagina,
		cabecalhoRelatorio(consorcio, "30/05/2024"),
		separadorPagina,
		linhaRelatorio("1.2 - Ações e Participações", "500,00 C", "0,00", "100,00", "600,00 c"),
		linhaRelatorio("Total do Ativo", "10.734,56 D", "2.500,50", "1.100,25", "12.134,81 D"),
		linhaRelatorio("2 - PASSIVO", "1,00 C", "0,00", "0,00", "1,00 C"),
	}, "\n")
}

func escreverArquivo(t *testing.T, dir, nome, conteudo string) string {
	t.Helper()
	path := filepath.Join(dir, nome)
	if err := os.WriteFile(path, []byte(conteudo), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
