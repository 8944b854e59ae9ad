package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pabean-labs/bc20-explorer/internal/models"
	"github.com/pabean-labs/bc20-explorer/internal/store"
	"github.com/pabean-labs/bc20-explorer/internal/store/migrations"
	srvErrors "github.com/pabean-labs/bc20-explorer/pkg/errors"
	"github.com/pabean-labs/bc20-explorer/pkg/filter"
)

var _ = Describe("DeclarationStore", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		db, err = store.NewDB(":memory:")
		Expect(err).NotTo(HaveOccurred())
		Expect(migrations.Run(ctx, db)).To(Succeed())

		seedDeclarations(ctx, db)
		s = store.NewStore(db)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	// matching compiles rules into an AND group and returns the matching ids ordered by idheader.
	matching := func(rules ...filter.Node) []int64 {
		res, err := filter.NewCompiler().Compile(filter.NewGroup(filter.CombinatorAnd, rules...))
		Expect(err).NotTo(HaveOccurred())

		rows, err := s.Declarations().List(ctx, store.WithPredicate(res.Predicate), store.WithSort("idheader", false))
		Expect(err).NotTo(HaveOccurred())
		return store.IDs(rows)
	}

	Describe("List with compiled predicates", func() {
		It("should match text regardless of case", func() {
			Expect(matching(filter.NewRule("importir.namaentitas", "contains", "acme"))).To(Equal([]int64{1}))
			Expect(matching(filter.NewRule("importir.namaentitas", "=", "other importer"))).To(Equal([]int64{2}))
		})

		It("should require a single goods line to satisfy same-relation rules", func() {
			ids := matching(
				filter.NewRule("barang.postarif", "=", "1234"),
				filter.NewRule("barang.uraian", "contains", "gadget"),
			)
			Expect(ids).To(Equal([]int64{2}))
		})

		It("should correlate rules of different groups independently", func() {
			ids := matching(
				filter.NewGroup(filter.CombinatorAnd, filter.NewRule("barang.postarif", "=", "1234")),
				filter.NewGroup(filter.CombinatorAnd, filter.NewRule("barang.uraian", "contains", "gadget")),
			)
			Expect(ids).To(Equal([]int64{1, 2}))
		})

		It("should scope entity rules to their role", func() {
			Expect(matching(filter.NewRule("ppjk.namaentitas", "contains", "acme"))).To(BeEmpty())
			Expect(matching(filter.NewRule("penjual.kodenegara", "=", "cn"))).To(Equal([]int64{1}))
		})

		It("should compute gross weight per TEU", func() {
			Expect(matching(filter.NewRule("calculated.gross_weight_per_teus", "=", 2))).To(Equal([]int64{1}))
		})

		It("should yield zero gross weight per TEU without containers", func() {
			Expect(matching(filter.NewRule("calculated.gross_weight_per_teus", "=", 0))).To(Equal([]int64{2, 3}))
		})

		It("should filter on item counts and duty totals", func() {
			Expect(matching(filter.NewRule("calculated.items_count", ">=", 2))).To(Equal([]int64{1}))
			Expect(matching(filter.NewRule("calculated.total_paid", ">", "120"))).To(Equal([]int64{1}))
			Expect(matching(filter.NewRule("calculated.total_paid", "=", 0))).To(Equal([]int64{2, 3}))
		})

		It("should treat comma separated and array between values alike", func() {
			fromString := matching(filter.NewRule("data.bruto", "between", "5,11"))
			fromArray := matching(filter.NewRule("data.bruto", "between", []any{5, 11}))

			Expect(fromString).To(Equal([]int64{1, 2}))
			Expect(fromArray).To(Equal(fromString))
		})

		It("should compare registration dates on the day", func() {
			Expect(matching(filter.NewRule("tanggaldaftar", "=", "2024-03-01"))).To(Equal([]int64{1}))
			Expect(matching(filter.NewRule("tanggaldaftar", ">", "2024-03-01"))).To(Equal([]int64{2, 3}))
		})

		It("should drop malformed dates instead of failing the query", func() {
			ids := matching(
				filter.NewRule("tanggaldaftar", "=", "not-a-date"),
				filter.NewRule("tanggaldaftar", ">=", "2024/13/45"),
				filter.NewRule("tanggaldaftar", ">", "2024-03-01"),
			)
			Expect(ids).To(Equal([]int64{2, 3}))
		})

		It("should return the same rows as an empty tree when values are empty", func() {
			Expect(matching(filter.NewRule("barang.uraian", "contains", ""))).To(Equal(matching()))
		})
	})

	Describe("Sorting and pagination", func() {
		It("should sort by registration date then id, newest first", func() {
			rows, err := s.Declarations().List(ctx, store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())
			Expect(store.IDs(rows)).To(Equal([]int64{3, 2, 1}))
		})

		It("should fall back to the default sort for non-header fields", func() {
			rows, err := s.Declarations().List(ctx, store.WithSort("barang.uraian", true))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.IDs(rows)).To(Equal([]int64{3, 2, 1}))
		})

		It("should sort by a whitelisted column", func() {
			rows, err := s.Declarations().List(ctx, store.WithSort("jalur", false))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.IDs(rows)).To(Equal([]int64{1, 2, 3}))
		})

		It("should apply limit and offset", func() {
			rows, err := s.Declarations().List(ctx, store.WithDefaultSort(), store.WithLimit(2), store.WithOffset(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(store.IDs(rows)).To(Equal([]int64{2, 1}))
		})

		It("should count rows matching a registration day", func() {
			day := time.Date(2024, 3, 2, 15, 0, 0, 0, time.UTC)
			count, err := s.Declarations().Count(ctx, store.ByRegistrationDay(day))
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))
		})
	})

	Describe("Hydrate", func() {
		It("should merge display columns onto the page rows", func() {
			rows, err := s.Declarations().List(ctx, store.WithSort("idheader", false))
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Declarations().Hydrate(ctx, rows)).To(Succeed())

			first := rows[0]
			Expect(first.ImporterName).To(Equal("ACME CORP"))
			Expect(first.BrokerName).To(Equal("PT PPJK SATU"))
			Expect(first.SellerName).To(Equal("SELLER LTD"))
			Expect(first.GoodsCount).To(Equal(2))
			Expect(first.FirstHSCode).To(Equal("1234"))
			Expect(first.FirstDescription).To(Equal("widget"))
			Expect(first.ContainerCount).To(Equal(3))
			Expect(first.TEUSum).To(Equal(5.25))

			Expect(rows[1].ImporterName).To(Equal("Other Importer"))
			Expect(rows[1].BrokerName).To(BeEmpty())
			Expect(rows[1].ContainerCount).To(BeZero())

			Expect(rows[2].GoodsCount).To(BeZero())
			Expect(rows[2].TEUSum).To(BeZero())
		})

		It("should not query anything for an empty page", func() {
			Expect(s.Declarations().Hydrate(ctx, nil)).To(Succeed())
		})

		It("should keep the row order", func() {
			rows, err := s.Declarations().List(ctx, store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Declarations().Hydrate(ctx, rows)).To(Succeed())
			Expect(store.IDs(rows)).To(Equal([]int64{3, 2, 1}))
		})
	})

	Describe("Get", func() {
		It("should load every child relation", func() {
			d, err := s.Declarations().Get(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			Expect(d.NomorAju).To(Equal("AJU1"))
			Expect(d.Data).NotTo(BeNil())
			Expect(d.Data.Bruto).To(Equal(10.5))
			Expect(d.Data.BC11Number).To(Equal("BC11-1"))
			Expect(d.Entities).To(HaveLen(4))
			Expect(d.Goods).To(HaveLen(2))
			Expect(d.Containers).To(HaveLen(3))
			Expect(d.Containers[2].TEU).To(Equal(2.25))
			Expect(d.Carriers).To(ConsistOf(models.Carrier{Name: "EVER GIVEN", Voyage: "001E", Flag: "PA"}))
			Expect(d.Documents).To(HaveLen(1))
			Expect(d.Documents[0].Date).NotTo(BeNil())
			Expect(d.TotalPaid).To(Equal(150.0))
			Expect(d.ImporterName).To(Equal("ACME CORP"))
			Expect(d.TEUSum).To(Equal(5.25))
		})

		It("should load a declaration without children", func() {
			d, err := s.Declarations().Get(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Data).To(BeNil())
			Expect(d.Goods).To(BeEmpty())
			Expect(d.TotalPaid).To(BeZero())
		})

		It("should return not found for unknown ids", func() {
			_, err := s.Declarations().Get(ctx, 99)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("Suggest", func() {
		It("should return distinct prefixes of a role scoped column", func() {
			route, err := filter.Resolve("importir.namaentitas")
			Expect(err).NotTo(HaveOccurred())

			values, err := s.Declarations().Suggest(ctx, route, "ac", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"ACME CORP"}))
		})

		It("should deduplicate values", func() {
			route, err := filter.Resolve("barang.postarif")
			Expect(err).NotTo(HaveOccurred())

			values, err := s.Declarations().Suggest(ctx, route, "", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"1234", "5678"}))
		})

		It("should honor the limit", func() {
			route, err := filter.Resolve("nomoraju")
			Expect(err).NotTo(HaveOccurred())

			values, err := s.Declarations().Suggest(ctx, route, "aju", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"AJU1", "AJU2"}))
		})
	})
})

var _ = Describe("ListSQL", func() {
	It("should number placeholders for postgres", func() {
		res, err := filter.NewCompiler().Compile(filter.NewGroup(filter.CombinatorAnd,
			filter.NewRule("jalur", "=", "h"),
			filter.NewRule("barang.uraian", "contains", "x"),
		))
		Expect(err).NotTo(HaveOccurred())

		st := store.NewStore(nil, store.WithDialect(store.Postgres))
		query, args, err := st.Declarations().ListSQL(store.WithPredicate(res.Predicate), store.WithDefaultSort(), store.WithLimit(20))
		Expect(err).NotTo(HaveOccurred())

		Expect(query).To(ContainSubstring("UPPER(h.jalur) = $1"))
		Expect(query).To(ContainSubstring("UPPER(b.uraian) LIKE $2"))
		Expect(query).NotTo(ContainSubstring("?"))
		Expect(query).To(HaveSuffix("ORDER BY h.tanggaldaftar DESC, h.idheader DESC LIMIT 20"))
		Expect(args).To(Equal([]any{"H", "%X%"}))
	})

	It("should tie-break ascending sorts on the newest id", func() {
		query, _, err := store.NewStore(nil).Declarations().ListSQL(store.WithSort("nomoraju", false), store.WithLimit(5))
		Expect(err).NotTo(HaveOccurred())
		Expect(query).To(HaveSuffix("ORDER BY h.nomoraju ASC, h.idheader DESC LIMIT 5"))
	})
})
