package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/access-ci-org/Operations-Router-News/internal/config"
	"github.com/access-ci-org/Operations-Router-News/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeNewsRepo 内存版 NewsRepository，用于对账逻辑的隔离测试
type fakeNewsRepo struct {
	news   map[string]*model.News
	assocs map[string]*model.NewsAssociation
	nextID uint64

	upsertErr      error
	createErr      error
	deleteNewsErr  error
	deleteAssocErr error

	upserts      int
	creates      int
	newsDeletes  int
	assocDeletes int
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{
		news:   make(map[string]*model.News),
		assocs: make(map[string]*model.NewsAssociation),
	}
}

func (f *fakeNewsRepo) ListNewsByPrefix(_ context.Context, prefix string) ([]*model.News, error) {
	var items []*model.News
	for urn, item := range f.news {
		if len(urn) >= len(prefix) && urn[:len(prefix)] == prefix {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeNewsRepo) ListAssociationsByPrefix(_ context.Context, prefix string) ([]*model.NewsAssociation, error) {
	var assocs []*model.NewsAssociation
	for _, a := range f.assocs {
		if len(a.NewsURN) >= len(prefix) && a.NewsURN[:len(prefix)] == prefix {
			assocs = append(assocs, a)
		}
	}
	return assocs, nil
}

func (f *fakeNewsRepo) UpsertNews(_ context.Context, item *model.News) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	f.news[item.URN] = item
	return nil
}

func (f *fakeNewsRepo) CreateAssociation(_ context.Context, assoc *model.NewsAssociation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.creates++
	f.nextID++
	assoc.ID = f.nextID
	f.assocs[assoc.Key()] = assoc
	return nil
}

func (f *fakeNewsRepo) DeleteAssociation(_ context.Context, assoc *model.NewsAssociation) error {
	if f.deleteAssocErr != nil {
		return f.deleteAssocErr
	}
	f.assocDeletes++
	delete(f.assocs, assoc.Key())
	return nil
}

func (f *fakeNewsRepo) DeleteNews(_ context.Context, urn string) error {
	if f.deleteNewsErr != nil {
		return f.deleteNewsErr
	}
	f.newsDeletes++
	delete(f.news, urn)
	return nil
}

func (f *fakeNewsRepo) GetNews(_ context.Context, urn string) (*model.News, error) {
	item, ok := f.news[urn]
	if !ok {
		return nil, errors.New("record not found")
	}
	return item, nil
}

func (f *fakeNewsRepo) ListAssociationsByURN(_ context.Context, urn string) ([]*model.NewsAssociation, error) {
	var assocs []*model.NewsAssociation
	for _, a := range f.assocs {
		if a.NewsURN == urn {
			assocs = append(assocs, a)
		}
	}
	return assocs, nil
}

func (f *fakeNewsRepo) GetPublisher(_ context.Context, organizationID string) (*model.NewsPublisher, error) {
	return &model.NewsPublisher{OrganizationID: organizationID}, nil
}

func newTestWarehouse(repo *fakeNewsRepo) *WarehouseService {
	cfg := &config.Config{
		Publisher: config.PublisherConfig{
			OrganizationID: "access-ci.org",
			Affiliation:    "access-ci.org",
			NewsURNPrefix:  testNewsPrefix,
			InputURNPrefix: testInputPrefix,
			WebURLBase:     "https://operations-api.access-ci.org/wh2/news/v1",
		},
	}
	publisher := &model.NewsPublisher{OrganizationID: "access-ci.org", OrganizationName: "ACCESS-CI"}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewWarehouseService(repo, publisher, cfg, logger)
}

func testBatch() []model.OutageRecord {
	return []model.OutageRecord{
		{ID: "xsede:1", OutageID: "A", ResourceID: "r1", OutageType: "Partial", Subject: "S", OutageStart: "2023-02-16T10:30:00Z"},
		{ID: "xsede:1", OutageID: "A", ResourceID: "r2", OutageType: "Partial", Subject: "ignored", OutageStart: "2023-02-16T10:30:00Z"},
	}
}

func TestReconcile_Convergence(t *testing.T) {
	repo := newFakeNewsRepo()
	ws := newTestWarehouse(repo)

	merged := MergeOutages(testBatch(), testInputPrefix, testNewsPrefix)
	ok, msg, stats := ws.Reconcile(context.Background(), merged)
	require.True(t, ok, msg)

	urn := testNewsPrefix + "A"
	require.Len(t, repo.news, 1)
	item := repo.news[urn]
	require.NotNil(t, item)
	assert.Equal(t, "Outage Partial", item.NewsType)
	assert.Equal(t, "S", item.Subject)
	assert.Equal(t, "https://operations-api.access-ci.org/wh2/news/v1/id/"+urn+"/?format=html", item.WebURL)
	require.NotNil(t, item.NewsStart)

	require.Len(t, repo.assocs, 2)
	assert.Contains(t, repo.assocs, urn+"->Resource/r1")
	assert.Contains(t, repo.assocs, urn+"->Resource/r2")

	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 0, stats.Deleted)
	assert.Equal(t, 0, stats.Skipped)
}

func TestReconcile_Idempotent(t *testing.T) {
	repo := newFakeNewsRepo()
	ws := newTestWarehouse(repo)
	merged := MergeOutages(testBatch(), testInputPrefix, testNewsPrefix)

	ok, _, _ := ws.Reconcile(context.Background(), merged)
	require.True(t, ok)
	createsAfterFirst := repo.creates

	// 第二轮同一批次：news 覆盖重写，关联原样保留，不产生删除
	ok, _, stats := ws.Reconcile(context.Background(), merged)
	require.True(t, ok)
	assert.Equal(t, 1, stats.Updated, "覆盖写仍计入 Updated")
	assert.Equal(t, 0, stats.Deleted)
	assert.Equal(t, createsAfterFirst, repo.creates, "已存在的关联不重写")
	assert.Equal(t, 0, repo.newsDeletes)
	assert.Equal(t, 0, repo.assocDeletes)
	assert.Len(t, repo.news, 1)
	assert.Len(t, repo.assocs, 2)
}

func TestReconcile_DeletesObsolete(t *testing.T) {
	repo := newFakeNewsRepo()
	ws := newTestWarehouse(repo)

	merged := MergeOutages(testBatch(), testInputPrefix, testNewsPrefix)
	ok, _, _ := ws.Reconcile(context.Background(), merged)
	require.True(t, ok)

	// 第二轮空批次：上一轮的 news 及其全部关联都应被删除
	ok, _, stats := ws.Reconcile(context.Background(), map[string]*model.MergedOutage{})
	require.True(t, ok)
	assert.Empty(t, repo.news)
	assert.Empty(t, repo.assocs)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 0, stats.Updated)
}

func TestReconcile_PartialDeletion(t *testing.T) {
	repo := newFakeNewsRepo()
	ws := newTestWarehouse(repo)

	ok, _, _ := ws.Reconcile(context.Background(), MergeOutages(testBatch(), testInputPrefix, testNewsPrefix))
	require.True(t, ok)

	// 下一轮 r2 不再受影响：只删那一条关联，news 保留
	shrunk := MergeOutages(testBatch()[:1], testInputPrefix, testNewsPrefix)
	ok, _, stats := ws.Reconcile(context.Background(), shrunk)
	require.True(t, ok)
	assert.Len(t, repo.news, 1)
	require.Len(t, repo.assocs, 1)
	assert.Contains(t, repo.assocs, testNewsPrefix+"A->Resource/r1")
	assert.Equal(t, 0, stats.Deleted, "Deleted 只统计 news 删除")
}

func TestReconcile_DuplicateResourceSinglePass(t *testing.T) {
	repo := newFakeNewsRepo()
	ws := newTestWarehouse(repo)

	records := []model.OutageRecord{
		{ID: "xsede:1", OutageID: "A", ResourceID: "r1", OutageType: "Partial"},
		{ID: "xsede:1", OutageID: "A", ResourceID: "r1", OutageType: "Partial"},
	}
	ok, _, _ := ws.Reconcile(context.Background(), MergeOutages(records, testInputPrefix, testNewsPrefix))
	require.True(t, ok)
	// 联合唯一约束：重复资源只建一条关联
	assert.Len(t, repo.assocs, 1)
	assert.Equal(t, 1, repo.creates)
}

func TestReconcile_UpsertFailureAbortsPass(t *testing.T) {
	repo := newFakeNewsRepo()
	// 预置一条将被淘汰的旧数据，验证失败后不会走到删除阶段
	stale := &model.News{URN: testNewsPrefix + "OLD"}
	repo.news[stale.URN] = stale
	repo.upsertErr = errors.New("connection reset")
	ws := newTestWarehouse(repo)

	ok, msg, stats := ws.Reconcile(context.Background(), MergeOutages(testBatch(), testInputPrefix, testNewsPrefix))
	assert.False(t, ok)
	assert.Contains(t, msg, testNewsPrefix+"A")
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 0, repo.newsDeletes, "整轮中止，不得执行删除")
	assert.Contains(t, repo.news, stale.URN)
}

func TestReconcile_AssociationFailureAbortsPass(t *testing.T) {
	repo := newFakeNewsRepo()
	repo.createErr = errors.New("duplicate key")
	ws := newTestWarehouse(repo)

	ok, msg, _ := ws.Reconcile(context.Background(), MergeOutages(testBatch(), testInputPrefix, testNewsPrefix))
	assert.False(t, ok)
	assert.Contains(t, msg, "Resource/r1")
	assert.Equal(t, 0, repo.assocDeletes)
}

func TestReconcile_DeleteFailuresNonFatal(t *testing.T) {
	repo := newFakeNewsRepo()
	ws := newTestWarehouse(repo)

	ok, _, _ := ws.Reconcile(context.Background(), MergeOutages(testBatch(), testInputPrefix, testNewsPrefix))
	require.True(t, ok)

	// 删除失败只记日志，本轮仍算成功；残留行下一轮自愈
	repo.deleteNewsErr = errors.New("lock timeout")
	repo.deleteAssocErr = errors.New("lock timeout")
	ok, msg, stats := ws.Reconcile(context.Background(), map[string]*model.MergedOutage{})
	assert.True(t, ok)
	assert.Empty(t, msg)
	assert.Equal(t, 0, stats.Deleted)
	assert.Len(t, repo.news, 1, "删除失败的行保留")
}

func TestReconcile_IgnoresForeignNamespace(t *testing.T) {
	repo := newFakeNewsRepo()
	// 其他命名空间的数据不在快照内，绝不能被当作过期数据删除
	foreign := &model.News{URN: "urn:other:news:X"}
	repo.news[foreign.URN] = foreign
	ws := newTestWarehouse(repo)

	ok, _, stats := ws.Reconcile(context.Background(), map[string]*model.MergedOutage{})
	require.True(t, ok)
	assert.Equal(t, 0, stats.Deleted)
	assert.Contains(t, repo.news, foreign.URN)
}
