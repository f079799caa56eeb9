package service

import (
	"context"
	"encoding/base64"

	"github.com/enciclo/control"
)

// User is a console account as listed by the backend.
type User struct {
	ID             int      `json:"id,omitempty"`
	User           string   `json:"user"`
	Name           string   `json:"name,omitempty"`
	Email          string   `json:"email,omitempty"`
	Password       string   `json:"passwd,omitempty"`
	Enabled        bool     `json:"isenabled"`
	Admin          bool     `json:"isadmin"`
	Editor         bool     `json:"iseditor"`
	Tester         bool     `json:"istester"`
	Dashboard      bool     `json:"dashboard_access"`
	IPRange        string   `json:"iprange,omitempty"`
	GeoIP          string   `json:"geoip,omitempty"`
	Referer        string   `json:"referer,omitempty"`
	Meta           string   `json:"meta,omitempty"`
	Collections    []string `json:"collections,omitempty"`
	StatsMin       string   `json:"stats_min,omitempty"`
	ManualStats    bool     `json:"manual_stats"`
	Period         []string `json:"period,omitempty"`
	Group          string   `json:"grupo,omitempty"`
	LastConnection string   `json:"last_connection,omitempty"`
}

// Collection is a content collection users can be granted.
type Collection struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// FakeStats is a manually entered monthly statistics row.
type FakeStats struct {
	ID         int    `json:"id,omitempty"`
	User       string `json:"user"`
	Collection string `json:"collection"`
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Logins     int    `json:"logins,omitempty"`
	Pages      int    `json:"pages,omitempty"`
	Questions  int    `json:"preguntas,omitempty"`
	Timestamp  string `json:"ts,omitempty"`
}

// ImportReport is the payload of bulk imports.
type ImportReport struct {
	Imported   int      `json:"imported"`
	Errors     []string `json:"errors,omitempty"`
	Duplicates []string `json:"duplicates,omitempty"`
}

// Users manages console accounts.
type Users struct{ Base }

func (s *Users) List(ctx context.Context, q control.Query) control.Response[List[User]] {
	return call[List[User]](ctx, s.Base, "user", q)
}

func (s *Users) Collections(ctx context.Context) control.Response[List[Collection]] {
	return call[List[Collection]](ctx, s.Base, "collections", nil)
}

func (s *Users) Delete(ctx context.Context, id int) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "deleteuser", control.Params{"id": id})
}

// Save creates the user when id is nil and updates it otherwise.
func (s *Users) Save(ctx context.Context, id *int, u User) control.Response[User] {
	return call[User](ctx, s.Base, "user", control.Params{"id": id, "data": u})
}

// ImportExcel creates users from a base64-encoded spreadsheet.
func (s *Users) ImportExcel(ctx context.Context, file string) control.Response[ImportReport] {
	return callLong[ImportReport](ctx, s.Base, "importexcel", control.Params{"file": file})
}

// ImportFromProcess creates users from the output of a backend process.
func (s *Users) ImportFromProcess(ctx context.Context, processID string) control.Response[ImportReport] {
	return callLong[ImportReport](ctx, s.Base, "importexcel", control.Params{"process": processID})
}

func (s *Users) ResetPassword(ctx context.Context, id int) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "resetpasswordvarios", control.Params{"id": id})
}

func (s *Users) SendAccessData(ctx context.Context, id int) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "sendinfologin", control.Params{"id": id})
}

func (s *Users) FakeStats(ctx context.Context, user string) control.Response[List[FakeStats]] {
	return call[List[FakeStats]](ctx, s.Base, "fake_stats", control.Params{"user": user})
}

func (s *Users) CreateFakeStats(ctx context.Context, f FakeStats) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "create_fake_stats", f)
}

func (s *Users) DeleteFakeStats(ctx context.Context, id int) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "delete_fake_stats", control.Params{"id": id})
}

// ImportFakeStats uploads a CSV or XLSX file of statistics for user. The
// content is sent base64-encoded along with its file name.
func (s *Users) ImportFakeStats(ctx context.Context, user, name string, content []byte) control.Response[ImportReport] {
	return callLong[ImportReport](ctx, s.Base, "import_fake_news", control.Params{
		"file": base64.StdEncoding.EncodeToString(content),
		"user": user,
		"name": name,
	})
}

// DisableGroup disables every account in group.
func (s *Users) DisableGroup(ctx context.Context, group string) control.Response[Ack] {
	return call[Ack](ctx, s.Base, "desactivargrupo", control.Params{"grupo": group})
}
