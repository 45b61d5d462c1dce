package progress

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cfaprep/cfaprep/internal/question"
)

// Fake is an in-memory Service for tests and offline demos. Reviewing a due
// item removes it from the queue, as the real service reschedules it at
// least a day out.
type Fake struct {
	mu sync.Mutex

	modules  map[[2]int][]question.Raw
	mock     []question.Raw
	due      []DueItem
	overview *Overview

	// ReadErr fails every read when set; SubmitErr and ReviewErr fail writes.
	ReadErr   error
	SubmitErr error
	ReviewErr error

	submissions []Submission
	reviews     []ReviewAnswer
	history     []Result
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{modules: make(map[[2]int][]question.Raw)}
}

// SetModule installs the bank for (bookID, moduleID).
func (f *Fake) SetModule(bookID, moduleID int, qs []question.Raw) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.modules[[2]int{bookID, moduleID}] = qs
}

// SetMockExam installs the mock exam set.
func (f *Fake) SetMockExam(qs []question.Raw) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mock = qs
}

// SetOverview sets what Progress returns.
func (f *Fake) SetOverview(ov *Overview) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overview = ov
}

// SetDue replaces the review queue.
func (f *Fake) SetDue(items []DueItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.due = append([]DueItem(nil), items...)
}

// Submissions returns every accepted SubmitResult payload.
func (f *Fake) Submissions() []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Submission(nil), f.submissions...)
}

// Reviews returns every accepted SubmitReview payload.
func (f *Fake) Reviews() []ReviewAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ReviewAnswer(nil), f.reviews...)
}

func (f *Fake) ModuleQuestions(_ context.Context, bookID, moduleID int) ([]question.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	qs, ok := f.modules[[2]int{bookID, moduleID}]
	if !ok {
		return nil, ErrNotFound
	}
	return qs, nil
}

func (f *Fake) BookQuestions(_ context.Context, bookID, limit int) ([]question.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	var out []question.Raw
	for key, qs := range f.modules {
		if key[0] == bookID {
			out = append(out, qs...)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// BookInfo lists the modules installed for bookID, named by number.
func (f *Fake) BookInfo(_ context.Context, bookID int) (*BookInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	info := &BookInfo{BookID: bookID, BookName: fmt.Sprintf("Book %d", bookID)}
	for key, qs := range f.modules {
		if key[0] == bookID {
			info.Modules = append(info.Modules, ModuleInfo{
				ModuleID:      key[1],
				ModuleName:    fmt.Sprintf("Module %d", key[1]),
				QuestionCount: len(qs),
			})
		}
	}
	if len(info.Modules) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(info.Modules, func(i, j int) bool { return info.Modules[i].ModuleID < info.Modules[j].ModuleID })
	return info, nil
}

func (f *Fake) MockExam(context.Context) ([]question.Raw, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return f.mock, nil
}

func (f *Fake) DueItems(_ context.Context, limit int) (*DueList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	items := f.due
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return &DueList{TotalDue: len(f.due), Questions: append([]DueItem(nil), items...)}, nil
}

func (f *Fake) SubmitResult(_ context.Context, s Submission) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return nil, f.SubmitErr
	}
	f.submissions = append(f.submissions, s)

	correct := 0
	for _, d := range s.QuestionDetails {
		if d.Correct {
			correct++
		}
	}
	var pct float64
	if n := len(s.QuestionDetails); n > 0 {
		pct = float64(correct) / float64(n) * 100
	}
	res := Result{
		TestType:         s.TestType,
		TestMode:         s.TestMode,
		BookID:           s.BookID,
		ModuleID:         s.ModuleID,
		TotalQuestions:   len(s.QuestionDetails),
		CorrectAnswers:   correct,
		ScorePercent:     pct,
		TimeSpentSeconds: s.TimeSpentSeconds,
		QuestionDetails:  s.QuestionDetails,
		CreatedAt:        time.Now(),
	}
	f.history = append([]Result{res}, f.history...)
	return &res, nil
}

func (f *Fake) SubmitReview(_ context.Context, a ReviewAnswer) (*ReviewAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReviewErr != nil {
		return nil, f.ReviewErr
	}
	idx := -1
	for i, it := range f.due {
		if it.QuestionID == a.QuestionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}
	f.reviews = append(f.reviews, a)
	f.due = append(f.due[:idx], f.due[idx+1:]...)

	days := 1
	if a.WasCorrect {
		days = 3
	}
	return &ReviewAck{
		QuestionID:      a.QuestionID,
		NewIntervalDays: days,
		NextReviewAt:    time.Now().AddDate(0, 0, days),
	}, nil
}

// History returns accepted submissions, newest first.
func (f *Fake) History(_ context.Context, limit int) ([]Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	out := f.history
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return append([]Result(nil), out...), nil
}

func (f *Fake) ErrorStats(context.Context) (*ErrorStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	return &ErrorStats{TotalErrors: len(f.due), DueToday: len(f.due)}, nil
}

func (f *Fake) Progress(context.Context) (*Overview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	if f.overview != nil {
		return f.overview, nil
	}
	return &Overview{}, nil
}
