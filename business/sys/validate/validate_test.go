package validate_test

import (
	"testing"

	"github.com/ardanlabs/powledger/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type transact struct {
	Recipient string `json:"recipient" validate:"required,account"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

func Test_Check(t *testing.T) {
	type table struct {
		name   string
		val    transact
		fields []string
	}

	tt := []table{
		{
			name: "valid",
			val:  transact{Recipient: "0xbEE6ACE826eC3DE1B6349888B9151B92522F7F76", Amount: 10},
		},
		{
			name:   "bad-account",
			val:    transact{Recipient: "bill", Amount: 10},
			fields: []string{"recipient"},
		},
		{
			name:   "missing",
			val:    transact{},
			fields: []string{"recipient", "amount"},
		},
	}

	t.Log("Given the need to validate request models.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen checking the %s model.", testID, tst.name)
				{
					err := validate.Check(tst.val)

					if len(tst.fields) == 0 {
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould pass validation: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
						return
					}

					if !validate.IsFieldErrors(err) {
						t.Fatalf("\t%s\tTest %d:\tShould get field errors: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

					fields := validate.GetFieldErrors(err).Fields()
					for _, name := range tst.fields {
						if _, exists := fields[name]; !exists {
							t.Fatalf("\t%s\tTest %d:\tShould report field %q: %v", failed, testID, name, fields)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould report the failing fields.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
