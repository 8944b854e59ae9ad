package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Explain Command", func() {
	var out *bytes.Buffer

	BeforeEach(func() {
		color.NoColor = true
		out = &bytes.Buffer{}
		timeNow = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	})

	AfterEach(func() {
		timeNow = time.Now
	})

	execute := func(args ...string) error {
		cmd := NewExplainCommand()
		cmd.SetOut(out)
		cmd.SetErr(out)
		if args == nil {
			args = []string{}
		}
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	It("should compile a text expression", func() {
		Expect(execute("importir.namaentitas ~ 'maju' and jalur = 'h'")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("EXISTS (SELECT 1 FROM bc20_entitas e"))
		Expect(out.String()).To(ContainSubstring(`"%MAJU%"`))
		Expect(out.String()).To(ContainSubstring(`"H"`))
	})

	It("should number placeholders for postgres", func() {
		Expect(execute("--dialect", "postgres", "jalur = 'H'")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("UPPER(h.jalur) = $1"))
	})

	It("should compile a JSON rule tree file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "rules.json")
		Expect(os.WriteFile(path, []byte(`{"combinator":"and","rules":[{"field":"calculated.items_count","operator":">","value":2}]}`), 0o600)).To(Succeed())

		Expect(execute("--file", path)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("SELECT COUNT(*) FROM bc20_barang b"))
	})

	It("should fall back to the registration day without a predicate", func() {
		Expect(execute("gudang.nama = 'x'")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("CAST(h.tanggaldaftar AS DATE)"))
		Expect(out.String()).To(ContainSubstring("Diagnostics"))
		Expect(out.String()).To(ContainSubstring("gudang.nama"))
	})

	It("should fail in strict mode", func() {
		Expect(execute("--strict", "gudang.nama = 'x'")).NotTo(Succeed())
	})

	It("should reject bad expressions", func() {
		Expect(execute("jalur =")).NotTo(Succeed())
	})

	It("should require input", func() {
		Expect(execute()).NotTo(Succeed())
	})
})
