package balancete

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"balancete-service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RelatorioCompleto(t *testing.T) {
	bal, err := Parse(relatorioExemplo("Consórcio ABC"))
	require.NoError(t, err)

	assert.Equal(t, domain.CabecalhoBalancete{
		MesAno:    "05/2024",
		Data:      "30/05/2024",
		Consorcio: "Consórcio ABC",
		CNPJ:      "12.345.678/0001-99",
	}, bal.Cabecalho)

	require.Len(t, bal.Linhas, 3)

	expected := []struct {
		conta, descricao                   string
		anterior, debito, credito, atual string
	}{
		{"1", "ATIVO", "10000.00", "2500.50", "1000.25", "11500.25"},
		{"11", "Caixa Geral - Matriz", "1234.56", "0", "0", "-1234.56"},
		{"1.2", "Ações e Participações", "-500", "0", "100", "-600"},
	}
	for i, e := range expected {
		l := bal.Linhas[i]
		assert.Equal(t, e.conta, l.Conta, "linha %d", i)
		assert.Equal(t, e.descricao, l.Descricao, "linha %d", i)
		assert.True(t, dec(e.anterior).Equal(l.SaldoAnterior), "linha %d saldo anterior: %s", i, l.SaldoAnterior)
		assert.True(t, dec(e.debito).Equal(l.Debito), "linha %d débito: %s", i, l.Debito)
		assert.True(t, dec(e.credito).Equal(l.Credito), "linha %d crédito: %s", i, l.Credito)
		assert.True(t, dec(e.atual).Equal(l.SaldoAtual), "linha %d saldo atual: %s", i, l.SaldoAtual)
	}
}

func TestParse_DocumentoVazio(t *testing.T) {
	bal, err := Parse("")
	require.NoError(t, err)
	assert.NotNil(t, bal.Linhas)
	assert.Empty(t, bal.Linhas)
	assert.Equal(t, domain.CabecalhoBalancete{}, bal.Cabecalho)
}

func TestParse_SemCabecalho(t *testing.T) {
	conteudo := linhaRelatorio("3 - RECEITAS", "0,00", "0,00", "350,00", "350,00 C")

	bal, err := Parse(conteudo)
	require.NoError(t, err)
	assert.Equal(t, domain.CabecalhoBalancete{}, bal.Cabecalho)
	require.Len(t, bal.Linhas, 1)
	assert.Equal(t, "3", bal.Linhas[0].Conta)
	assert.True(t, dec("-350").Equal(bal.Linhas[0].SaldoAtual))
}

func TestParse_QuebrasDeLinhaWindows(t *testing.T) {
	conteudo := strings.ReplaceAll(relatorioExemplo("Consórcio ABC"), "\n", "\r\n")

	bal, err := Parse(conteudo)
	require.NoError(t, err)
	assert.Equal(t, "30/05/2024", bal.Cabecalho.Data)
	require.Len(t, bal.Linhas, 3)
	assert.True(t, dec("11500.25").Equal(bal.Linhas[0].SaldoAtual))
}

func TestParse_TotalDoAtivoEncerraLinhas(t *testing.T) {
	tests := []struct {
		name   string
		marker string
	}{
		{"maiusculas", "TOTAL DO ATIVO"},
		{"minusculas", "total do ativo"},
		{"misto no meio da descricao", "9 - Total do Ativo Circulante"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conteudo := strings.Join([]string{
				linhaRelatorio("1 - ATIVO", "1,00 D", "0,00", "0,00", "1,00 D"),
				linhaRelatorio(tt.marker, "1,00 D", "0,00", "0,00", "1,00 D"),
				linhaRelatorio("2 - PASSIVO", "1,00 C", "0,00", "0,00", "1,00 C"),
			}, "\n")

			bal, err := Parse(conteudo)
			require.NoError(t, err)
			require.Len(t, bal.Linhas, 1)
			assert.Equal(t, "1", bal.Linhas[0].Conta)
		})
	}
}

func TestParse_ValorInvalidoInterrompeArquivo(t *testing.T) {
	conteudo := strings.Join([]string{
		linhaRelatorio("1 - ATIVO", "1,00 D", "0,00", "0,00", "1,00 D"),
		linhaRelatorio("2 - PASSIVO", "1,00 C", "abc", "0,00", "1,00 C"),
	}, "\n")

	_, err := Parse(conteudo)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValorInvalido)
	assert.Contains(t, err.Error(), "linha 2")
	assert.Contains(t, err.Error(), "débito")
}

func TestParse_ContaEntreParentesesInvalida(t *testing.T) {
	conteudo := linhaRelatorio("(1A) - Subtotal", "1,00 D", "0,00", "0,00", "1,00 D")

	_, err := Parse(conteudo)
	assert.ErrorIs(t, err, ErrContaInvalida)
}

func TestFiltrarLinhas(t *testing.T) {
	longa := linhaRelatorio("1 - ATIVO", "1,00 D", "0,00", "0,00", "1,00 D")
	curta := longa[:tamanhoMinimoLinha-1]
	exata := strings.Repeat("x", tamanhoMinimoLinha)

	texto := strings.Join([]string{
		curta,
		exata,
		longa + " Folha: 2",
		"Data: 30/05/2024" + longa,
		"Mes/Ano: 05/2024" + longa,
		longa,
	}, "\n")

	got := filtrarLinhas(texto)
	assert.Equal(t, []string{exata, longa}, got)
}

func TestLimparTexto_RemoveCabecalhosERegua(t *testing.T) {
	texto := "antes\n" + cabecalhoRelatorio("X", "01/01/2024") + "\nmeio" + separadorPagina + "\n" +
		cabecalhoRelatorio("Y", "02/01/2024") + "\nfim"

	got := limparTexto(texto)
	assert.Equal(t, "antes\n\nmeio\n\nfim", got)
	assert.NotContains(t, got, marcadorInicioCabecalho)
}

func TestLocalizarCabecalho_SemMarcadorFinal(t *testing.T) {
	_, _, ok := localizarCabecalho("Balancete Analitico\nMes/Ano: 05/2024\n", 0)
	assert.False(t, ok)

	// sem "ATUAL" nada é removido
	texto := "Balancete Analitico\n" + strings.Repeat("y", 90)
	assert.Equal(t, texto, limparTexto(texto))
}

func TestLerCabecalho(t *testing.T) {
	tests := []struct {
		name     string
		linhas   []string
		expected domain.CabecalhoBalancete
	}{
		{
			name: "exemplo completo",
			linhas: []string{
				"Balancete Analitico",
				"Mes/Ano: 05/2024",
				"Consórcio ABC   Data: 30/05/2024",
				"CNPJ: 12.345.678/0001-99 Insc. Estadual: isento",
			},
			expected: domain.CabecalhoBalancete{
				MesAno:    "05/2024",
				Data:      "30/05/2024",
				Consorcio: "Consórcio ABC",
				CNPJ:      "12.345.678/0001-99",
			},
		},
		{
			name:     "sem marcadores",
			linhas:   []string{"Balancete Analitico", "SALDO ATUAL"},
			expected: domain.CabecalhoBalancete{},
		},
		{
			name:     "CNPJ sem valor",
			linhas:   []string{"CNPJ:   "},
			expected: domain.CabecalhoBalancete{},
		},
		{
			name:     "Data sem consorcio",
			linhas:   []string{"   Data: 01/02/2024   "},
			expected: domain.CabecalhoBalancete{Data: "01/02/2024"},
		},
		{
			name:     "ultima linha com Data prevalece",
			linhas:   []string{"Primeiro Data: 01/01/2024", "Segundo Data: 02/02/2024"},
			expected: domain.CabecalhoBalancete{Consorcio: "Segundo", Data: "02/02/2024"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lerCabecalho(tt.linhas))
		})
	}
}

func TestFormatarValor(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.234,56 D", "1234.56"},
		{"1.234,56 C", "-1234.56"},
		{"   1.234,56 c   ", "-1234.56"},
		{"1.234,56", "1234.56"},
		{"0,00", "0"},
		{"1.000.000,01 D", "1000000.01"},
		{"12,5 X", "12.5"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := formatarValor(tt.input)
			require.NoError(t, err)
			assert.True(t, dec(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestFormatarValor_Invalido(t *testing.T) {
	for _, input := range []string{"", "   ", "abc", "1,00 C extra", "R$ 1,00 D"} {
		t.Run(input, func(t *testing.T) {
			_, err := formatarValor(input)
			assert.ErrorIs(t, err, ErrValorInvalido)
		})
	}
}

// Formatar no padrão brasileiro com sufixo C/D e voltar pelo parser preserva o valor.
func TestSegmentarLinha_IdaEVolta(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	gerar := func() (decimal.Decimal, string) {
		d := decimal.New(rng.Int63n(200_000_000_000)-100_000_000_000, -2)
		tipo := "D"
		if d.IsNegative() {
			tipo = "C"
		}
		return d, formatarBRL(d.Abs()) + " " + tipo
	}

	for i := 0; i < 500; i++ {
		anterior, tAnterior := gerar()
		debito, tDebito := gerar()
		credito, tCredito := gerar()
		atual, tAtual := gerar()

		linha := linhaRelatorio("1.1.01 - Conta Ü", tAnterior, tDebito, tCredito, tAtual)
		runas := []rune(linha)
		require.Len(t, runas[len(runas)-tamanhoZonaValores:], 74)

		l, err := segmentarLinha(linha)
		require.NoError(t, err, linha)
		assert.True(t, anterior.Equal(l.SaldoAnterior), "%s != %s", anterior, l.SaldoAnterior)
		assert.True(t, debito.Equal(l.Debito), "%s != %s", debito, l.Debito)
		assert.True(t, credito.Equal(l.Credito), "%s != %s", credito, l.Credito)
		assert.True(t, atual.Equal(l.SaldoAtual), "%s != %s", atual, l.SaldoAtual)
		assert.Equal(t, "1.1.01", l.Conta)
		assert.Equal(t, "Conta Ü", l.Descricao)
	}
}

func TestSegmentarLinha_ZonaDeValoresEmCaracteres(t *testing.T) {
	linha := linhaRelatorio("ÇÃÕÉ - Descrição com acentuação", "1,00 D", "2,00", "3,00", "4,00 C")
	require.Greater(t, len(linha), utf8.RuneCountInString(linha))

	l, err := segmentarLinha(linha)
	require.NoError(t, err)
	assert.Equal(t, "ÇÃÕÉ", l.Conta)
	assert.Equal(t, "Descrição com acentuação", l.Descricao)
	assert.True(t, dec("1").Equal(l.SaldoAnterior))
	assert.True(t, dec("2").Equal(l.Debito))
	assert.True(t, dec("3").Equal(l.Credito))
	assert.True(t, dec("-4").Equal(l.SaldoAtual))
}

func TestDividirLinha(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		conta     string
		descricao string
	}{
		{"conta e descricao", "1.1.01 - Caixa", "1.1.01", "Caixa"},
		{"hifens na descricao", "1.1.01 - Caixa - Filial - Sul", "1.1.01", "Caixa - Filial - Sul"},
		{"parenteses com descricao composta", "(123) - Caixa Geral - Matriz", "123", "Caixa Geral - Matriz"},
		{"parenteses com zeros", "  (00042) - Subtotal  ", "42", "Subtotal"},
		{"parenteses sem descricao", "(7)", "7", ""},
		{"so conta", "   1.2.03   ", "1.2.03", ""},
		{"vazio", "      ", "", ""},
		{"so hifens", " - - ", "", ""},
		{"hifen sem espacos", "1-Caixa", "1", "Caixa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conta, descricao, err := dividirLinha(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.conta, conta)
			assert.Equal(t, tt.descricao, descricao)
		})
	}
}

func TestDividirLinha_ContaInvalida(t *testing.T) {
	_, _, err := dividirLinha("(12.3) - Subtotal")
	assert.ErrorIs(t, err, ErrContaInvalida)
}
