package filter

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Parser", func() {
	Context("Valid expressions", func() {
		type testCase struct {
			input  string
			output string
		}

		tests := []testCase{
			// ===== COMPARISONS =====
			{input: "jalur = 'H'", output: `((jalur = "H"))`},
			{input: `jalur = "H"`, output: `((jalur = "H"))`},
			{input: "jalur != 'M'", output: `((jalur != "M"))`},
			{input: "jalur <> 'M'", output: `((jalur != "M"))`},
			{input: "data.bruto > 1000", output: `((data.bruto > 1000))`},
			{input: "data.bruto >= 12.5", output: `((data.bruto >= 12.5))`},
			{input: "data.bruto < -1", output: `((data.bruto < -1))`},
			{input: "data.bruto <= '100'", output: `((data.bruto <= "100"))`},
			{input: "importir.namaentitas ~ 'maju'", output: `((importir.namaentitas contains "maju"))`},
			{input: "importir.namaentitas !~ 'maju'", output: `((importir.namaentitas doesNotContain "maju"))`},
			{input: "barang.postarif in ('8703', '8704')", output: `((barang.postarif in ["8703", "8704"]))`},
			{input: "calculated.items_count IN (1, 2)", output: `((calculated.items_count in [1, 2]))`},

			// ===== LOGIC =====
			{input: "jalur = 'H' and nomoraju = '1'", output: `((jalur = "H") and (nomoraju = "1"))`},
			{input: "jalur = 'H' or jalur = 'K'", output: `((jalur = "H") or (jalur = "K"))`},
			{input: "a = 1 and b = 2 and c = 3", output: `((a = 1) and (b = 2) and (c = 3))`},
			{input: "a = 1 and (b = 2 and c = 3)", output: `((a = 1) and (b = 2) and (c = 3))`},
			{input: "a = 1 or b = 2 and c = 3", output: `((a = 1) or ((b = 2) and (c = 3)))`},
			{input: "a = 1 and b = 2 or c = 3", output: `(((a = 1) and (b = 2)) or (c = 3))`},
			{input: "(a = 1 or b = 2) and c = 3", output: `(((a = 1) or (b = 2)) and (c = 3))`},
			{input: "(a = 1)", output: `((a = 1))`},
			{input: "((a = 1 or b = 2))", output: `((a = 1) or (b = 2))`},

			// ===== EMPTY =====
			{input: "", output: `()`},
			{input: "   ", output: `()`},
		}

		for _, test := range tests {
			It("should parse: "+test.input, func() {
				g, err := ParseExpression(test.input)
				Expect(err).NotTo(HaveOccurred())
				Expect(g.String()).To(Equal(test.output))
			})
		}

		It("should produce rules the compiler understands", func() {
			g, err := ParseExpression("importir.namaentitas ~ 'maju' and importir.kodenegara = 'id'")
			Expect(err).NotTo(HaveOccurred())

			res, err := NewCompiler().Compile(g)
			Expect(err).NotTo(HaveOccurred())

			sql, args, err := res.Predicate.ToSql()
			Expect(err).NotTo(HaveOccurred())
			Expect(sql).To(Equal("EXISTS (SELECT 1 FROM bc20_entitas e WHERE e.idheader = h.idheader AND (e.kodeentitas = ? AND (UPPER(e.namaentitas) LIKE ? AND UPPER(e.kodenegara) = ?)))"))
			Expect(args).To(Equal([]any{"1", "%MAJU%", "ID"}))
		})
	})

	Context("Number literals", func() {
		It("should keep leading zeros of codes", func() {
			g, err := ParseExpression("barang.postarif = 08471300 and nomordaftar = 000001")
			Expect(err).NotTo(HaveOccurred())
			Expect(g.String()).To(Equal(`((barang.postarif = 08471300) and (nomordaftar = 000001))`))

			res, err := NewCompiler().Compile(g)
			Expect(err).NotTo(HaveOccurred())
			_, args, err := res.Predicate.ToSql()
			Expect(err).NotTo(HaveOccurred())
			Expect(args).To(Equal([]any{"08471300", "000001"}))
		})

		It("should still compare numeric columns as numbers", func() {
			g, err := ParseExpression("data.bruto > 0012.50")
			Expect(err).NotTo(HaveOccurred())

			res, err := NewCompiler().Compile(g)
			Expect(err).NotTo(HaveOccurred())
			_, args, err := res.Predicate.ToSql()
			Expect(err).NotTo(HaveOccurred())
			Expect(args).To(Equal([]any{12.5}))
		})
	})

	Context("Invalid expressions", func() {
		inputs := []string{
			"jalur",
			"jalur =",
			"= 'H'",
			"jalur = 'H' and",
			"(jalur = 'H'",
			"jalur = 'H')",
			"jalur in 'H'",
			"jalur in ('H',)",
			"jalur @ 'H'",
			"jalur = 'H' jalur = 'K'",
			"jalur = 'unclosed",
			"jalur ! 'H'",
		}

		for _, input := range inputs {
			It("should return ParseError for: "+input, func() {
				g, err := ParseExpression(input)
				Expect(err).To(HaveOccurred())
				Expect(g).To(BeNil())

				var pe ParseError
				Expect(errors.As(err, &pe)).To(BeTrue())
				Expect(pe.Message).NotTo(BeEmpty())
			})
		}

		It("should report the position of the offending token", func() {
			_, err := ParseExpression("jalur = 'H' and =")

			var pe ParseError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Position).To(Equal(16))
		})
	})
})
