package cli

import (
	"github.com/spf13/pflag"

	"github.com/jsamuelsen/quotation-service/internal/domain"
)

// criteriaFlags are the filter flags shared by list, summary and export.
type criteriaFlags struct {
	company string
	email   string
	from    string
	to      string
}

func (f *criteriaFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.company, "company", "", "keep quotations whose client company contains this text (case-insensitive)")
	fs.StringVar(&f.email, "email", "", "keep quotations whose client email contains this text (case-insensitive)")
	fs.StringVar(&f.from, "from", "", "keep quotations created on or after this date (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "keep quotations created on or before this date (YYYY-MM-DD)")
}

func (f *criteriaFlags) criteria() (domain.FilterCriteria, error) {
	return domain.NewFilterCriteria(f.company, f.email, f.from, f.to)
}
