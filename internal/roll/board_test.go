package roll

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeStudents() []Student {
	return []Student{
		{ID: 1, FirstName: "Alan", LastName: "Lee", State: StateUnmarked},
		{ID: 2, FirstName: "John", LastName: "Key", State: StateUnmarked},
		{ID: 3, FirstName: "Carlos", LastName: "Morris", State: StateUnmarked},
	}
}

func loadedStore(t *testing.T, students []Student) *Store {
	t.Helper()
	st := NewStore(NewBoardState())
	_, _, err := st.Dispatch(LoadSucceeded{Students: students})
	require.NoError(t, err)
	return st
}

func TestReduce_LoadSucceeded_ResetsStatesAndCounts(t *testing.T) {
	in := threeStudents()
	in[0].State = StateLate

	s, tr, err := Reduce(NewBoardState(), LoadSucceeded{Students: in})
	require.NoError(t, err)
	assert.Nil(t, tr)

	assert.Equal(t, StatusLoaded, s.Status)
	assert.Equal(t, Counts{All: 3}, s.Counts)
	for _, st := range s.Students {
		assert.Equal(t, StateUnmarked, st.State)
	}
	// 入参不被修改
	assert.Equal(t, StateLate, in[0].State)
}

func TestReduce_LoadFailed(t *testing.T) {
	s, _, err := Reduce(NewBoardState(), LoadFailed{Reason: "timeout"})
	require.NoError(t, err)
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "timeout", s.Error)
	assert.Nil(t, s.Visible())
}

func TestScenario_ThreeStudentsClickTwice(t *testing.T) {
	st := loadedStore(t, threeStudents())

	s := st.State()
	assert.Equal(t, Counts{All: 3, Present: 0, Late: 0, Absent: 0}, s.Counts)

	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	_, tr, err := st.Dispatch(StudentClicked{StudentID: 1})
	require.NoError(t, err)
	assert.Equal(t, &Transition{StudentID: 1, From: StateUnmarked, To: StatePresent}, tr)

	s, tr, err = st.Dispatch(StudentClicked{StudentID: 1})
	require.NoError(t, err)
	assert.Equal(t, &Transition{StudentID: 1, From: StatePresent, To: StateLate}, tr)

	assert.Equal(t, Counts{All: 3, Present: 0, Late: 1, Absent: 0}, s.Counts)
	got, ok := s.Student(1)
	require.True(t, ok)
	assert.Equal(t, StateLate, got.State)
}

func TestReduce_AllCountNeverChanges(t *testing.T) {
	st := loadedStore(t, threeStudents())
	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		s, _, err := st.Dispatch(StudentClicked{StudentID: i%3 + 1})
		require.NoError(t, err)
		assert.Equal(t, 3, s.Counts.All)
		assert.Equal(t, Tally(s.Students), s.Counts)
	}
}

func TestReduce_ClickErrors(t *testing.T) {
	_, _, err := Reduce(NewBoardState(), StudentClicked{StudentID: 1})
	assert.ErrorIs(t, err, ErrRosterNotLoaded)

	st := loadedStore(t, threeStudents())
	_, _, err = st.Dispatch(StudentClicked{StudentID: 1})
	assert.ErrorIs(t, err, ErrNotInRollMode)

	_, _, err = st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	before := st.State()
	after, _, err := st.Dispatch(StudentClicked{StudentID: 99})
	assert.ErrorIs(t, err, ErrStudentNotFound)
	assert.Equal(t, before, after)
}

func TestReduce_ClickDoesNotMutatePreviousSnapshot(t *testing.T) {
	st := loadedStore(t, threeStudents())
	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	before := st.State()
	_, _, err = st.Dispatch(StudentClicked{StudentID: 2})
	require.NoError(t, err)

	s, _ := before.Student(2)
	assert.Equal(t, StateUnmarked, s.State)
}

func TestReduce_QueryActions(t *testing.T) {
	s := NewBoardState()
	var err error

	s, _, err = Reduce(s, SortChanged{Key: SortByLastName})
	require.NoError(t, err)
	assert.Equal(t, SortByLastName, s.Query.SortKey)

	s, _, err = Reduce(s, SortDirectionToggled{})
	require.NoError(t, err)
	assert.False(t, s.Query.Ascending)

	s, _, err = Reduce(s, SortDirectionSet{Ascending: true})
	require.NoError(t, err)
	assert.True(t, s.Query.Ascending)

	s, _, err = Reduce(s, SearchChanged{Term: "lee"})
	require.NoError(t, err)
	assert.Equal(t, "lee", s.Query.Search)

	s, _, err = Reduce(s, FilterChanged{Filter: CategoryLate})
	require.NoError(t, err)
	assert.Equal(t, CategoryLate, s.Query.Filter)

	_, _, err = Reduce(s, SortChanged{Key: "age"})
	assert.ErrorIs(t, err, ErrInvalidSortKey)

	_, _, err = Reduce(s, FilterChanged{Filter: "unmark"})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestReduce_RollModeRequiresLoadedRoster(t *testing.T) {
	_, _, err := Reduce(NewBoardState(), RollModeEntered{})
	assert.ErrorIs(t, err, ErrRosterNotLoaded)

	s, _, err := Reduce(NewBoardState(), RollModeExited{})
	require.NoError(t, err)
	assert.False(t, s.RollMode)
}

type bogusAction struct{}

func (bogusAction) Name() string { return "bogus" }

func TestReduce_UnknownAction(t *testing.T) {
	_, _, err := Reduce(NewBoardState(), bogusAction{})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestReduce_VersionIncreases(t *testing.T) {
	s := NewBoardState()
	v := s.Version
	s, _, _ = Reduce(s, LoadSucceeded{Students: threeStudents()})
	assert.Greater(t, s.Version, v)
}

func TestStore_SubscribeReceivesSnapshots(t *testing.T) {
	st := loadedStore(t, threeStudents())

	ch, cancel := st.Subscribe()
	defer cancel()

	first := <-ch
	assert.Equal(t, StatusLoaded, first.Status)

	_, _, err := st.Dispatch(SearchChanged{Term: "al"})
	require.NoError(t, err)

	select {
	case s := <-ch:
		assert.Equal(t, "al", s.Query.Search)
	case <-time.After(time.Second):
		t.Fatal("未收到状态推送")
	}
}

func TestStore_SlowSubscriberGetsLatest(t *testing.T) {
	st := loadedStore(t, threeStudents())
	ch, cancel := st.Subscribe()
	defer cancel()

	for _, term := range []string{"a", "b", "c"} {
		_, _, err := st.Dispatch(SearchChanged{Term: term})
		require.NoError(t, err)
	}

	s := <-ch
	assert.Equal(t, "c", s.Query.Search)
}

func TestStore_CancelAndClose(t *testing.T) {
	st := loadedStore(t, threeStudents())

	ch, cancel := st.Subscribe()
	<-ch
	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	ch2, cancel2 := st.Subscribe()
	defer cancel2()
	<-ch2
	st.Close()
	_, ok = <-ch2
	assert.False(t, ok)

	ch3, _ := st.Subscribe()
	_, ok = <-ch3
	assert.False(t, ok)
}

func TestStore_ConcurrentClicks(t *testing.T) {
	st := loadedStore(t, threeStudents())
	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, _ = st.Dispatch(StudentClicked{StudentID: i%3 + 1})
		}(i)
	}
	wg.Wait()

	s := st.State()
	assert.Equal(t, Tally(s.Students), s.Counts)
	assert.Equal(t, 3, s.Counts.Marked())
}

func TestReduce_LoadStartedLeavesRollMode(t *testing.T) {
	st := loadedStore(t, threeStudents())
	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	s, _, err := st.Dispatch(LoadStarted{})
	require.NoError(t, err)
	assert.False(t, s.RollMode)

	s, _, err = st.Dispatch(LoadSucceeded{Students: threeStudents()})
	require.NoError(t, err)
	assert.False(t, s.RollMode, "重新加载后需重新进入点名模式")
}

func TestStore_DispatchAfterClose(t *testing.T) {
	st := loadedStore(t, threeStudents())
	before := st.State()
	st.Close()

	_, _, err := st.Dispatch(SearchChanged{Term: "al"})
	assert.ErrorIs(t, err, ErrBoardClosed)
	assert.Equal(t, before, st.State())

	_, _, err = st.Commit(func(BoardState) error { return nil }, RollModeExited{})
	assert.ErrorIs(t, err, ErrBoardClosed)
}

func TestStore_CommitSeesStateItApplies(t *testing.T) {
	st := loadedStore(t, threeStudents())
	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)

	inCommit := make(chan struct{})
	release := make(chan struct{})
	var saved BoardState
	done := make(chan error, 1)
	go func() {
		_, _, err := st.Commit(func(s BoardState) error {
			close(inCommit)
			<-release
			saved = s
			return nil
		}, RollModeExited{})
		done <- err
	}()

	<-inCommit
	clicked := make(chan error, 1)
	go func() {
		_, _, err := st.Dispatch(StudentClicked{StudentID: 1})
		clicked <- err
	}()
	close(release)

	require.NoError(t, <-done)
	// 点击在 Commit 之后执行，此时已退出点名模式
	assert.ErrorIs(t, <-clicked, ErrNotInRollMode)
	assert.Equal(t, saved.Counts, st.State().Counts)
	assert.False(t, st.State().RollMode)
}

func TestStore_CommitErrorKeepsState(t *testing.T) {
	st := loadedStore(t, threeStudents())
	_, _, err := st.Dispatch(RollModeEntered{})
	require.NoError(t, err)
	before := st.State()

	_, _, err = st.Commit(func(BoardState) error { return assert.AnError }, RollModeExited{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before, st.State())
}
