package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoalPulse/internal/model"
	"GoalPulse/internal/model/dto"
	"GoalPulse/internal/notify"
	"GoalPulse/internal/recurrence"
	pkgerrors "GoalPulse/pkg/errors"
	"GoalPulse/pkg/snowflake"
)

func TestMain(m *testing.M) {
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ========== 内存版 store 实现 ==========

type fakeCheckInStore struct {
	mu       sync.Mutex
	byID     map[int64]*model.CheckIn
	byPublic map[int64]*model.CheckIn
	nextID   int64

	// 扫描快照返回后调用，用来模拟扫描期间的并发写
	afterFindAllOverdue func()
}

func newFakeCheckInStore() *fakeCheckInStore {
	return &fakeCheckInStore{
		byID:     make(map[int64]*model.CheckIn),
		byPublic: make(map[int64]*model.CheckIn),
	}
}

func (f *fakeCheckInStore) Create(ctx context.Context, checkIn *model.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	checkIn.ID = f.nextID
	f.byID[checkIn.ID] = checkIn
	f.byPublic[checkIn.PublicID] = checkIn
	return nil
}

func (f *fakeCheckInStore) CreateBatch(ctx context.Context, checkIns []*model.CheckIn) error {
	for _, c := range checkIns {
		if err := f.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCheckInStore) Save(ctx context.Context, checkIn *model.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[checkIn.ID] = checkIn
	f.byPublic[checkIn.PublicID] = checkIn
	return nil
}

func (f *fakeCheckInStore) GetByID(ctx context.Context, id int64) (*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, pkgerrors.CheckInNotFound
}

func (f *fakeCheckInStore) GetByPublicID(ctx context.Context, publicID int64) (*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byPublic[publicID]; ok {
		return c, nil
	}
	return nil, pkgerrors.CheckInNotFound
}

func (f *fakeCheckInStore) FindUpcoming(ctx context.Context, userID int64, now time.Time, within time.Duration) ([]*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CheckIn
	for _, c := range f.byID {
		if c.UserID == userID && c.IsDue() &&
			!c.ScheduledDate.Before(now) && !c.ScheduledDate.After(now.Add(within)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckInStore) FindOverdue(ctx context.Context, userID int64, now time.Time) ([]*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CheckIn
	for _, c := range f.byID {
		if c.UserID == userID && c.IsOverdue(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckInStore) FindByDateRange(ctx context.Context, userID int64, from, to time.Time) ([]*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CheckIn
	for _, c := range f.byID {
		if c.UserID == userID && !c.ScheduledDate.Before(from) && !c.ScheduledDate.After(to) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckInStore) FindByGoal(ctx context.Context, userID, goalID int64) ([]*model.CheckIn, error) {
	return nil, nil
}

func (f *fakeCheckInStore) FindDueForReminder(ctx context.Context, now time.Time, window time.Duration) ([]*model.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CheckIn
	for _, c := range f.byID {
		if c.IsDue() && !c.ScheduledDate.Before(now) && !c.ScheduledDate.After(now.Add(window)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCheckInStore) FindAllOverdue(ctx context.Context, now time.Time) ([]*model.CheckIn, error) {
	f.mu.Lock()
	// 模拟数据库扫描：返回行快照而不是存储里的指针
	var out []*model.CheckIn
	for _, c := range f.byID {
		if c.IsOverdue(now) {
			snapshot := *c
			out = append(out, &snapshot)
		}
	}
	f.mu.Unlock()

	if f.afterFindAllOverdue != nil {
		f.afterFindAllOverdue()
	}
	return out, nil
}

func (f *fakeCheckInStore) CountByStatus(ctx context.Context, userID int64, status model.CheckInStatus, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, c := range f.byID {
		if c.UserID == userID && c.Status == status &&
			!c.ScheduledDate.Before(from) && !c.ScheduledDate.After(to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCheckInStore) SaveMissed(ctx context.Context, checkIn *model.CheckIn) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[checkIn.ID]
	if !ok || !stored.IsDue() {
		return false, nil
	}
	stored.Status = model.CheckInStatusMissed
	stored.NextScheduledDate = checkIn.NextScheduledDate
	return true, nil
}

type fakeGoalStore struct {
	goals map[int64]*model.Goal
}

func (f *fakeGoalStore) Create(ctx context.Context, goal *model.Goal) error { return nil }
func (f *fakeGoalStore) Save(ctx context.Context, goal *model.Goal) error   { return nil }

func (f *fakeGoalStore) GetByID(ctx context.Context, id int64) (*model.Goal, error) {
	for _, g := range f.goals {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, pkgerrors.GoalNotFound
}

func (f *fakeGoalStore) GetByPublicID(ctx context.Context, publicID int64) (*model.Goal, error) {
	if g, ok := f.goals[publicID]; ok {
		return g, nil
	}
	return nil, pkgerrors.GoalNotFound
}

func (f *fakeGoalStore) FindByUser(ctx context.Context, userID int64, status model.GoalStatus) ([]*model.Goal, error) {
	return nil, nil
}

type fakeUserStore struct {
	users map[int64]*model.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, pkgerrors.UserNotFound
}

func (f *fakeUserStore) GetByEmailHash(ctx context.Context, emailHash string) (*model.User, error) {
	return nil, pkgerrors.UserNotFound
}

func (f *fakeUserStore) FindSummaryRecipients(ctx context.Context, weekly bool) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if weekly && u.WeeklySummaryEnabled {
			out = append(out, u)
		}
		if !weekly && u.MonthlySummaryEnabled {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) Save(ctx context.Context, user *model.User) error { return nil }

type fakeNotificationStore struct {
	mu    sync.Mutex
	inApp []*model.InAppNotification
	tasks []*model.NotificationTask
}

func (f *fakeNotificationStore) CreateTask(ctx context.Context, task *model.NotificationTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeNotificationStore) GetTaskByCode(ctx context.Context, taskCode int64) (*model.NotificationTask, error) {
	return nil, pkgerrors.CheckInNotFound
}

func (f *fakeNotificationStore) MarkTaskSuccess(ctx context.Context, taskCode int64) error { return nil }
func (f *fakeNotificationStore) MarkTaskFailed(ctx context.Context, taskCode int64, reason string) error {
	return nil
}

func (f *fakeNotificationStore) CreateInApp(ctx context.Context, notification *model.InAppNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inApp = append(f.inApp, notification)
	return nil
}

func (f *fakeNotificationStore) FindUnreadInApp(ctx context.Context, userID int64, limit int) ([]*model.InAppNotification, error) {
	return f.inApp, nil
}

func (f *fakeNotificationStore) MarkInAppRead(ctx context.Context, userID, notificationID int64) error {
	return nil
}

func (f *fakeNotificationStore) DeleteStaleTasks(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationStore) DeleteStaleInApp(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// ========== 测试工装 ==========

// memoryMarker 内存版投放标记，替代 redis
type memoryMarker struct {
	mu    sync.Mutex
	marks map[string]struct{}
}

func newMemoryMarker() *memoryMarker {
	return &memoryMarker{marks: make(map[string]struct{})}
}

func (m *memoryMarker) key(checkInID int64, kind string, scheduledDate time.Time) string {
	return fmt.Sprintf("%d|%s|%s", checkInID, kind, scheduledDate.UTC().Format(time.RFC3339))
}

func (m *memoryMarker) TryMark(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := m.key(checkInID, kind, scheduledDate)
	if _, ok := m.marks[k]; ok {
		return false, nil
	}
	m.marks[k] = struct{}{}
	return true, nil
}

func (m *memoryMarker) Unmark(ctx context.Context, checkInID int64, kind string, scheduledDate time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.marks, m.key(checkInID, kind, scheduledDate))
	return nil
}

type fixture struct {
	svc           *CheckInService
	checkIns      *fakeCheckInStore
	notifications *fakeNotificationStore
	marker        *memoryMarker
}

func newFixture() *fixture {
	checkIns := newFakeCheckInStore()
	notifications := &fakeNotificationStore{}
	marker := newMemoryMarker()
	goals := &fakeGoalStore{goals: map[int64]*model.Goal{
		1001: {BaseModel: model.BaseModel{ID: 1}, PublicID: 1001, UserID: 1, Title: "读书"},
		2001: {BaseModel: model.BaseModel{ID: 2}, PublicID: 2001, UserID: 2, Title: "跑步"},
	}}
	users := &fakeUserStore{users: map[int64]*model.User{
		1: {BaseModel: model.BaseModel{ID: 1}, EmailEncrypted: "enc", Status: model.UserStatusActive},
	}}

	// in-app 通道不依赖 redis / mq，测试里只挂它
	dispatcher := notify.NewDispatcherWithMarker(marker, notify.NewInAppChannel(notifications))

	return &fixture{
		svc:           NewCheckInService(checkIns, goals, users, dispatcher),
		checkIns:      checkIns,
		notifications: notifications,
		marker:        marker,
	}
}

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func validCreateReq() dto.CreateCheckInRequest {
	return dto.CreateCheckInRequest{
		GoalID:        1001,
		Frequency:     string(recurrence.FrequencyDaily),
		ScheduledDate: testNow.Add(24 * time.Hour),
		IsRecurring:   true,
	}
}

// ========== Create ==========

func TestCreateAppliesDefaultReminder(t *testing.T) {
	f := newFixture()

	checkIn, err := f.svc.Create(context.Background(), 1, validCreateReq(), testNow)
	require.NoError(t, err)

	assert.True(t, checkIn.Reminder.Enabled)
	assert.Equal(t, 60, checkIn.Reminder.AdvanceTimeMinutes)
	assert.Equal(t, []model.ReminderMethod{model.ReminderMethodEmail}, checkIn.Reminder.Methods)
	assert.Equal(t, model.CheckInStatusScheduled, checkIn.Status)
	assert.NotZero(t, checkIn.PublicID)
}

func TestCreateRejectsUnknownFrequency(t *testing.T) {
	f := newFixture()
	req := validCreateReq()
	req.Frequency = "fortnightly"

	_, err := f.svc.Create(context.Background(), 1, req, testNow)
	assert.ErrorIs(t, err, pkgerrors.FrequencyInvalid)
}

func TestCreateRejectsPastDate(t *testing.T) {
	f := newFixture()
	req := validCreateReq()
	req.ScheduledDate = testNow.Add(-time.Hour)

	_, err := f.svc.Create(context.Background(), 1, req, testNow)
	assert.ErrorIs(t, err, pkgerrors.ScheduledDateInvalid)
}

func TestCreateRejectsForeignGoal(t *testing.T) {
	f := newFixture()
	req := validCreateReq()
	req.GoalID = 2001 // belongs to user 2

	_, err := f.svc.Create(context.Background(), 1, req, testNow)
	assert.ErrorIs(t, err, pkgerrors.GoalNotFound)
}

func TestCreateRejectsBadReminder(t *testing.T) {
	f := newFixture()
	zero := 0
	req := validCreateReq()
	req.Reminder = &dto.ReminderSettingsInput{AdvanceTimeMinutes: &zero}

	_, err := f.svc.Create(context.Background(), 1, req, testNow)
	assert.ErrorIs(t, err, pkgerrors.ReminderInvalid)

	req = validCreateReq()
	req.Reminder = &dto.ReminderSettingsInput{Methods: []string{"carrier-pigeon"}}
	_, err = f.svc.Create(context.Background(), 1, req, testNow)
	assert.ErrorIs(t, err, pkgerrors.ReminderInvalid)
}

// ========== CreateSeries ==========

func TestCreateSeriesWeeklyWithEndDate(t *testing.T) {
	f := newFixture()
	end := testNow.AddDate(0, 0, 28) // 4 周
	req := dto.CreateSeriesRequest{
		GoalID:    1001,
		Frequency: string(recurrence.FrequencyWeekly),
		StartDate: testNow,
		EndDate:   &end,
	}

	series, err := f.svc.CreateSeries(context.Background(), 1, req, testNow)
	require.NoError(t, err)
	require.Len(t, series, 5) // 第0、7、14、21、28天

	// 链式 next 指向下一条，最后一条为空
	for i := 0; i < len(series)-1; i++ {
		require.NotNil(t, series[i].NextScheduledDate)
		assert.Equal(t, series[i+1].ScheduledDate, *series[i].NextScheduledDate)
	}
	assert.Nil(t, series[len(series)-1].NextScheduledDate)

	for _, c := range series {
		assert.True(t, c.IsRecurring)
		require.NotNil(t, c.RecurrenceEndDate)
		assert.Equal(t, end, *c.RecurrenceEndDate)
	}
}

func TestCreateSeriesCapsAtFifty(t *testing.T) {
	f := newFixture()
	// daily + 默认一年边界，远超上限
	req := dto.CreateSeriesRequest{
		GoalID:    1001,
		Frequency: string(recurrence.FrequencyDaily),
		StartDate: testNow,
	}

	series, err := f.svc.CreateSeries(context.Background(), 1, req, testNow)
	require.NoError(t, err)
	assert.Len(t, series, 50)
}

func TestCreateSeriesDefaultHorizon(t *testing.T) {
	f := newFixture()
	// bi-weekly 一年 = 27 条，不触发上限
	req := dto.CreateSeriesRequest{
		GoalID:    1001,
		Frequency: string(recurrence.FrequencyBiWeekly),
		StartDate: testNow,
	}

	series, err := f.svc.CreateSeries(context.Background(), 1, req, testNow)
	require.NoError(t, err)
	assert.Len(t, series, 27)
}

func TestCreateSeriesRejectsInvertedRange(t *testing.T) {
	f := newFixture()
	end := testNow.Add(-24 * time.Hour)
	req := dto.CreateSeriesRequest{
		GoalID:    1001,
		Frequency: string(recurrence.FrequencyWeekly),
		StartDate: testNow,
		EndDate:   &end,
	}

	_, err := f.svc.CreateSeries(context.Background(), 1, req, testNow)
	assert.ErrorIs(t, err, pkgerrors.SeriesRangeInvalid)
}

func TestGenerateOccurrencesCustomZeroFallsBackToWeekly(t *testing.T) {
	rule := recurrence.Rule{Frequency: recurrence.FrequencyCustom}
	occurrences := generateOccurrences(testNow, testNow.AddDate(0, 0, 21), rule)

	require.Len(t, occurrences, 4)
	assert.Equal(t, testNow.AddDate(0, 0, 7), occurrences[1])
}

// ========== 状态流转 ==========

func TestCompleteDispatchesInAppReceipt(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), 1, validCreateReq(), testNow)
	require.NoError(t, err)

	completed, err := f.svc.Complete(context.Background(), 1, created.PublicID,
		dto.CompleteCheckInRequest{Assessment: map[string]interface{}{"mood": "good"}},
		testNow.Add(25*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, model.CheckInStatusCompleted, completed.Status)
	require.NotNil(t, completed.NextScheduledDate)
	// 下一次排期锚定原 scheduledDate，而不是完成时间
	assert.Equal(t, created.ScheduledDate.AddDate(0, 0, 1), *completed.NextScheduledDate)

	require.Len(t, f.notifications.inApp, 1)
	assert.Equal(t, model.NotificationKindCompletion, f.notifications.inApp[0].Kind)
}

func TestCompleteTwiceFails(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), 1, validCreateReq(), testNow)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), 1, created.PublicID, dto.CompleteCheckInRequest{}, testNow)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), 1, created.PublicID, dto.CompleteCheckInRequest{}, testNow)
	assert.ErrorIs(t, err, pkgerrors.CheckInAlreadyCompleted)
}

func TestCompleteForeignCheckInFails(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), 1, validCreateReq(), testNow)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), 2, created.PublicID, dto.CompleteCheckInRequest{}, testNow)
	assert.ErrorIs(t, err, pkgerrors.CheckInNotFound)
}

func TestRescheduleRejectsPastDate(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), 1, validCreateReq(), testNow)
	require.NoError(t, err)

	_, err = f.svc.Reschedule(context.Background(), 1, created.PublicID, testNow.Add(-time.Hour), testNow)
	assert.ErrorIs(t, err, pkgerrors.ScheduledDateInvalid)
}

func TestRescheduleMovesDate(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), 1, validCreateReq(), testNow)
	require.NoError(t, err)

	newDate := testNow.Add(72 * time.Hour)
	updated, err := f.svc.Reschedule(context.Background(), 1, created.PublicID, newDate, testNow)
	require.NoError(t, err)

	assert.Equal(t, newDate, updated.ScheduledDate)
	assert.Equal(t, model.CheckInStatusScheduled, updated.Status)
}

// ========== 查询 ==========

func TestGetByDateRangeRejectsInvertedRange(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetByDateRange(context.Background(), 1, testNow, testNow.Add(-time.Hour))
	assert.ErrorIs(t, err, pkgerrors.SeriesRangeInvalid)
}

// ========== 调度扫描 ==========

// seedCheckIn 往 store 里塞一条指定排期和状态的打卡，绕过 Create 的日期校验
func seedCheckIn(t *testing.T, f *fixture, publicID int64, scheduledDate time.Time, status model.CheckInStatus, reminder model.ReminderSettings) {
	t.Helper()
	require.NoError(t, f.checkIns.Create(context.Background(), &model.CheckIn{
		PublicID:      publicID,
		UserID:        1,
		GoalID:        1,
		ScheduledDate: scheduledDate,
		Status:        status,
		Reminder:      reminder,
	}))
}

func TestDispatchDueRemindersHonorsWindowAndMarker(t *testing.T) {
	f := newFixture()
	inAppReminder := model.ReminderSettings{
		Enabled:            true,
		AdvanceTimeMinutes: 60,
		Methods:            []model.ReminderMethod{model.ReminderMethodInApp},
	}
	// 30 分钟后到期，落在 60 分钟提醒窗口内
	seedCheckIn(t, f, 9200, testNow.Add(30*time.Minute), model.CheckInStatusScheduled, inAppReminder)
	// 10 小时后到期，窗口还没开
	seedCheckIn(t, f, 9201, testNow.Add(10*time.Hour), model.CheckInStatusScheduled, inAppReminder)

	dispatched, err := f.svc.DispatchDueReminders(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, dispatched)
	require.Len(t, f.notifications.inApp, 1)
	assert.Equal(t, model.NotificationKindReminder, f.notifications.inApp[0].Kind)

	// 重叠扫描靠标记去重，不会重复投放
	dispatched, err = f.svc.DispatchDueReminders(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, dispatched)
	assert.Len(t, f.notifications.inApp, 1)
}

func TestProcessOverdueDispatchesThenMisses(t *testing.T) {
	f := newFixture()
	seedCheckIn(t, f, 9100, testNow.Add(-2*time.Hour), model.CheckInStatusScheduled, model.DefaultReminderSettings())

	missed, err := f.svc.ProcessOverdue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, missed)

	got, err := f.checkIns.GetByPublicID(context.Background(), 9100)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusMissed, got.Status)

	// 过期提醒在标记 missed 之前已投放
	require.Len(t, f.notifications.inApp, 1)
	assert.Equal(t, model.NotificationKindOverdue, f.notifications.inApp[0].Kind)

	// 已 missed 的行不会再被扫到，重跑是无操作
	missed, err = f.svc.ProcessOverdue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, missed)
	assert.Len(t, f.notifications.inApp, 1)
}

func TestProcessOverdueYieldsToConcurrentCompletion(t *testing.T) {
	f := newFixture()
	seedCheckIn(t, f, 9101, testNow.Add(-2*time.Hour), model.CheckInStatusScheduled, model.DefaultReminderSettings())

	// 扫描拿到快照之后、落库之前，用户完成了这条打卡
	f.checkIns.afterFindAllOverdue = func() {
		f.checkIns.afterFindAllOverdue = nil
		_, err := f.svc.Complete(context.Background(), 1, 9101, dto.CompleteCheckInRequest{}, testNow)
		require.NoError(t, err)
	}

	missed, err := f.svc.ProcessOverdue(context.Background(), testNow)
	require.NoError(t, err)
	assert.Zero(t, missed)

	// 用户的完成不能被扫描打回 missed
	got, err := f.checkIns.GetByPublicID(context.Background(), 9101)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusCompleted, got.Status)
}

// ========== 清理 ==========

func TestCleanupMissesStaleDueCheckIns(t *testing.T) {
	f := newFixture()
	stale := testNow.AddDate(0, 0, -120)
	seedCheckIn(t, f, 9001, stale, model.CheckInStatusScheduled, model.DefaultReminderSettings())
	seedCheckIn(t, f, 9002, stale, model.CheckInStatusCompleted, model.DefaultReminderSettings())

	missed, err := f.svc.Cleanup(context.Background(), testNow, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), missed)

	// 超期待办补记为 missed，终态行原样保留，没有任何行被删除
	got, err := f.checkIns.GetByPublicID(context.Background(), 9001)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusMissed, got.Status)

	done, err := f.checkIns.GetByPublicID(context.Background(), 9002)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusCompleted, done.Status)
}

func TestCleanupLeavesDueWithinRetention(t *testing.T) {
	f := newFixture()
	seedCheckIn(t, f, 9003, testNow.AddDate(0, 0, -30), model.CheckInStatusScheduled, model.DefaultReminderSettings())

	missed, err := f.svc.Cleanup(context.Background(), testNow, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, missed)

	got, err := f.checkIns.GetByPublicID(context.Background(), 9003)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInStatusScheduled, got.Status)
}
