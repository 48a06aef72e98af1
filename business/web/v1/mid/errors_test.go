package mid_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/business/web/v1/mid"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Errors(t *testing.T) {
	type table struct {
		name   string
		err    error
		status int
		kind   string
		fields bool
	}

	rejected := &database.Error{Kind: database.KindInvalidSignature, Msg: "bad signature"}

	tt := []table{
		{
			name:   "trusted",
			err:    errs.NewTrusted(rejected, http.StatusBadRequest),
			status: http.StatusBadRequest,
			kind:   "invalid signature",
		},
		{
			name:   "trusted-wrapped",
			err:    errs.NewTrusted(fmt.Errorf("block not accepted: %w", rejected), http.StatusNotAcceptable),
			status: http.StatusNotAcceptable,
			kind:   "invalid signature",
		},
		{
			name:   "validation",
			err:    validate.Check(struct{ Amount uint64 `json:"amount" validate:"required"` }{}),
			status: http.StatusBadRequest,
			fields: true,
		},
		{
			name:   "untrusted",
			err:    fmt.Errorf("disk on fire"),
			status: http.StatusInternalServerError,
		},
	}

	t.Log("Given the need to respond to handler errors in a uniform way.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen handling a %s error.", testID, tst.name)
				{
					app := web.NewApp(make(chan os.Signal, 1), mid.Errors(zap.NewNop().Sugar()))
					h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						return tst.err
					}
					app.Handle(http.MethodGet, "v1", "/test", h)

					r := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
					w := httptest.NewRecorder()
					app.ServeHTTP(w, r)

					if w.Code != tst.status {
						t.Fatalf("\t%s\tTest %d:\tShould receive status %d: %d", failed, testID, tst.status, w.Code)
					}
					t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)

					var resp errs.Response
					if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to decode the response.", success, testID)

					if resp.Kind != tst.kind {
						t.Fatalf("\t%s\tTest %d:\tShould report kind %q: %q", failed, testID, tst.kind, resp.Kind)
					}
					if tst.fields && len(resp.Fields) == 0 {
						t.Fatalf("\t%s\tTest %d:\tShould report the failing fields.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould describe the error.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
