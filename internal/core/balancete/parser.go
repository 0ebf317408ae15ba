package balancete

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"

	"balancete-service/internal/domain"

	"github.com/shopspring/decimal"
)

// Marcadores e larguras fixas do relatório "Balancete Analitico".
const (
	marcadorInicioCabecalho = "Balancete Analitico"
	marcadorFimCabecalho    = "ATUAL"
	marcadorFimAtivo        = "TOTAL DO ATIVO"

	marcadorMesAno = "Mes/Ano:"
	marcadorData   = "Data:"
	marcadorFolha  = "Folha:"
	marcadorCNPJ   = "CNPJ:"

	tamanhoMinimoLinha = 80

	// A zona de valores ocupa os últimos 74 caracteres da linha:
	// saldo anterior (19) | débito (19) | crédito (17) | saldo atual (19).
	tamanhoZonaValores   = 74
	tamanhoSaldoAtual    = 19
	tamanhoCredito       = 17
	tamanhoDebito        = 19
	tamanhoSaldoAnterior = tamanhoZonaValores - tamanhoSaldoAtual - tamanhoCredito - tamanhoDebito
	inicioDebito         = tamanhoSaldoAnterior
	inicioCredito        = inicioDebito + tamanhoDebito
	inicioSaldoAtual     = inicioCredito + tamanhoCredito

	tamanhoSeparadorTraco = 131
)

// separadorPagina é a régua de traços que o sistema contábil imprime entre blocos.
var separadorPagina = " " + strings.Repeat("-", tamanhoSeparadorTraco)

var (
	// ErrValorInvalido indica um campo numérico que não pôde ser convertido em decimal.
	ErrValorInvalido = errors.New("valor numérico inválido")
	// ErrContaInvalida indica um código de conta entre parênteses que não é um inteiro.
	ErrContaInvalida = errors.New("código de conta inválido")
)

// Parse converte o texto bruto de um balancete em cabeçalho e linhas.
// Linhas que não atendem ao layout são descartadas; um valor numérico
// inválido em uma linha retida interrompe o arquivo inteiro.
func Parse(conteudo string) (domain.Balancete, error) {
	conteudo = normalizarQuebras(conteudo)

	var cabecalho domain.CabecalhoBalancete
	if inicio, fim, ok := localizarCabecalho(conteudo, 0); ok {
		cabecalho = lerCabecalho(strings.Split(conteudo[inicio:fim], "\n"))
	}

	linhas := filtrarLinhas(limparTexto(conteudo))

	resultado := domain.Balancete{
		Cabecalho: cabecalho,
		Linhas:    make([]domain.LinhaBalancete, 0, len(linhas)),
	}
	for i, linha := range linhas {
		l, err := segmentarLinha(linha)
		if err != nil {
			return domain.Balancete{}, fmt.Errorf("linha %d: %w", i+1, err)
		}
		resultado.Linhas = append(resultado.Linhas, l)
	}
	return resultado, nil
}

// ---------------------- cabeçalho ----------------------

func normalizarQuebras(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// localizarCabecalho retorna o primeiro trecho a partir de `de` que começa em
// "Balancete Analitico" e termina no "ATUAL" seguinte, inclusive.
func localizarCabecalho(conteudo string, de int) (inicio, fim int, ok bool) {
	idx := strings.Index(conteudo[de:], marcadorInicioCabecalho)
	if idx < 0 {
		return 0, 0, false
	}
	inicio = de + idx
	resto := inicio + len(marcadorInicioCabecalho)
	idxFim := strings.Index(conteudo[resto:], marcadorFimCabecalho)
	if idxFim < 0 {
		return 0, 0, false
	}
	return inicio, resto + idxFim + len(marcadorFimCabecalho), true
}

func lerCabecalho(linhas []string) domain.CabecalhoBalancete {
	var cab domain.CabecalhoBalancete
	for _, linha := range linhas {
		linha = strings.TrimSpace(linha)
		if _, depois, ok := dividirPorMarcador(linha, marcadorMesAno); ok {
			cab.MesAno = strings.TrimSpace(depois)
		}
		if antes, depois, ok := dividirPorMarcador(linha, marcadorData); ok {
			cab.Consorcio = strings.TrimSpace(antes)
			cab.Data = strings.TrimSpace(depois)
		}
		if _, depois, ok := dividirPorMarcador(linha, marcadorCNPJ); ok {
			cab.CNPJ = ""
			if campos := strings.Fields(depois); len(campos) > 0 {
				cab.CNPJ = campos[0]
			}
		}
	}
	return cab
}

// dividirPorMarcador devolve o texto antes da primeira ocorrência do marcador
// e o texto entre a primeira e a segunda ocorrência.
func dividirPorMarcador(linha, marcador string) (antes, depois string, ok bool) {
	antes, resto, ok := strings.Cut(linha, marcador)
	if !ok {
		return "", "", false
	}
	depois, _, _ = strings.Cut(resto, marcador)
	return antes, depois, true
}

// ---------------------- limpeza e filtro ----------------------

// limparTexto remove todos os blocos de cabeçalho (um por página) e as réguas de traços.
func limparTexto(conteudo string) string {
	var b strings.Builder
	b.Grow(len(conteudo))

	pos := 0
	for {
		inicio, fim, ok := localizarCabecalho(conteudo, pos)
		if !ok {
			break
		}
		b.WriteString(conteudo[pos:inicio])
		pos = fim
	}
	b.WriteString(conteudo[pos:])

	return strings.ReplaceAll(b.String(), separadorPagina, "")
}

func filtrarLinhas(texto string) []string {
	var linhas []string
	for _, linha := range strings.Split(texto, "\n") {
		if utf8.RuneCountInString(linha) < tamanhoMinimoLinha {
			continue
		}
		if strings.Contains(linha, marcadorFolha) ||
			strings.Contains(linha, marcadorData) ||
			strings.Contains(linha, marcadorMesAno) {
			continue
		}
		if strings.Contains(strings.ToUpper(linha), marcadorFimAtivo) {
			break
		}
		linhas = append(linhas, linha)
	}
	return linhas
}

// ---------------------- segmentação ----------------------

func segmentarLinha(linha string) (domain.LinhaBalancete, error) {
	runas := []rune(linha)
	corte := len(runas) - tamanhoZonaValores
	zona := runas[corte:]

	var l domain.LinhaBalancete
	campos := []struct {
		nome  string
		texto string
		dest  *decimal.Decimal
	}{
		{"saldo anterior", string(zona[:inicioDebito]), &l.SaldoAnterior},
		{"débito", string(zona[inicioDebito:inicioCredito]), &l.Debito},
		{"crédito", string(zona[inicioCredito:inicioSaldoAtual]), &l.Credito},
		{"saldo atual", string(zona[inicioSaldoAtual:]), &l.SaldoAtual},
	}

	for _, c := range campos {
		v, err := formatarValor(c.texto)
		if err != nil {
			return domain.LinhaBalancete{}, fmt.Errorf("%s: %w", c.nome, err)
		}
		*c.dest = v
	}

	conta, descricao, err := dividirLinha(string(runas[:corte]))
	if err != nil {
		return domain.LinhaBalancete{}, err
	}
	l.Conta = conta
	l.Descricao = descricao
	return l, nil
}

// formatarValor converte "1.234,56 C" em -1234.56. Sem sufixo, ou com "D", o valor é positivo.
func formatarValor(valor string) (decimal.Decimal, error) {
	valor = strings.TrimSpace(valor)
	numero, tipo := valor, ""
	if partes := strings.Fields(valor); len(partes) == 2 {
		numero, tipo = partes[0], partes[1]
	}

	normalizado := strings.ReplaceAll(strings.ReplaceAll(numero, ".", ""), ",", ".")
	if normalizado == "" {
		return decimal.Zero, fmt.Errorf("%w: campo vazio", ErrValorInvalido)
	}
	num, err := decimal.NewFromString(normalizado)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrValorInvalido, valor)
	}
	if strings.EqualFold(tipo, "C") {
		num = num.Neg()
	}
	return num, nil
}

// dividirLinha separa "conta - descrição". Hifens excedentes pertencem à descrição.
func dividirLinha(linha string) (conta, descricao string, err error) {
	var partes []string
	for _, p := range strings.Split(linha, "-") {
		if p = strings.TrimSpace(p); p != "" {
			partes = append(partes, p)
		}
	}

	switch {
	case len(partes) >= 2:
		conta = partes[0]
		descricao = strings.Join(partes[1:], " - ")
	case len(partes) == 1:
		conta = partes[0]
	}

	if strings.Contains(conta, "(") {
		limpo := strings.NewReplacer("(", "", ")", "").Replace(conta)
		n, ok := new(big.Int).SetString(strings.TrimSpace(limpo), 10)
		if !ok {
			return "", "", fmt.Errorf("%w: %q", ErrContaInvalida, conta)
		}
		conta = n.String()
	}
	return conta, descricao, nil
}
