package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"LinkUp/internal/model"
	"LinkUp/internal/pkg/errcode"
	"LinkUp/internal/storage/mocks"
)

type postFixture struct {
	db    *gorm.DB
	store *mocks.MockObjectStore
	svc   *PostService
}

// newPostFixture 用户 1 拥有私有创作者 10
func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db := newTestDB(t)
	seedUser(t, db, 1)
	seedUser(t, db, 2)
	seedCreator(t, db, 10, 1, false)
	store := mocks.NewMockObjectStore(gomock.NewController(t))
	return &postFixture{db: db, store: store, svc: NewPostService(db, NewAccessService(db), store)}
}

func (f *postFixture) seedMediaPost(t *testing.T, key string) *model.Post {
	t.Helper()
	url := "http://cdn/" + key
	p := &model.Post{CreatorID: 10, Type: model.PostTypeImage, MediaKey: &key, MediaURL: &url}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func strPtr(s string) *string { return &s }

func imageFile() *MediaFile {
	return &MediaFile{Filename: "cat.PNG", ContentType: "image/png", Size: 3, Reader: strings.NewReader("png")}
}

func TestPostCreate_Text(t *testing.T) {
	f := newPostFixture(t)

	post, err := f.svc.Create(context.Background(), 1, 10, CreatePostInput{Type: model.PostTypeText, Content: strPtr("hello")})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Nil(t, post.MediaKey)
}

func TestPostCreate_Validation(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, 10, CreatePostInput{Type: "audio", Content: strPtr("x")})
	assert.ErrorIs(t, err, ErrInvalidPostType)

	_, err = f.svc.Create(ctx, 1, 10, CreatePostInput{Type: model.PostTypeText, Content: strPtr("  ")})
	assert.ErrorIs(t, err, ErrContentRequired)

	_, err = f.svc.Create(ctx, 1, 10, CreatePostInput{Type: model.PostTypeText, Content: strPtr("x"), Media: imageFile()})
	assert.ErrorIs(t, err, ErrMediaNotAllowed)

	_, err = f.svc.Create(ctx, 1, 10, CreatePostInput{Type: model.PostTypeVideo})
	assert.ErrorIs(t, err, ErrMediaRequired)

	_, err = f.svc.Create(ctx, 2, 10, CreatePostInput{Type: model.PostTypeImage, Media: imageFile()})
	assert.ErrorIs(t, err, errcode.ErrNotOwner)
}

func TestPostCreate_UploadsBeforeRow(t *testing.T) {
	f := newPostFixture(t)
	var uploaded string
	f.store.EXPECT().
		PutObject(gomock.Any(), gomock.Any(), gomock.Any(), int64(3), "image/png").
		DoAndReturn(func(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
			// 上传时行尚未写入
			var n int64
			require.NoError(t, f.db.Model(&model.Post{}).Count(&n).Error)
			assert.Zero(t, n)
			uploaded = key
			return "http://cdn/" + key, nil
		})

	post, err := f.svc.Create(context.Background(), 1, 10, CreatePostInput{Type: model.PostTypeImage, Media: imageFile()})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uploaded, "media/"))
	assert.True(t, strings.HasSuffix(uploaded, ".png"))
	require.NotNil(t, post.MediaKey)
	assert.Equal(t, uploaded, *post.MediaKey)
	assert.Equal(t, "http://cdn/"+uploaded, *post.MediaURL)
}

func TestPostCreate_UploadFailureWritesNothing(t *testing.T) {
	f := newPostFixture(t)
	f.store.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("minio down"))

	_, err := f.svc.Create(context.Background(), 1, 10, CreatePostInput{Type: model.PostTypeImage, Media: imageFile()})
	assert.Equal(t, errcode.CodeInternal, errcode.CodeOf(err))
	assert.Zero(t, countRows(t, f.db, &model.Post{}, "1 = 1"))
}

func TestPostCreate_RowFailureOrphansObject(t *testing.T) {
	f := newPostFixture(t)
	f.store.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("http://cdn/x", nil)
	require.NoError(t, f.db.Migrator().DropTable(&model.Post{}))

	// 不会调用 DeleteObject，对象留作孤儿
	_, err := f.svc.Create(context.Background(), 1, 10, CreatePostInput{Type: model.PostTypeImage, Media: imageFile()})
	assert.Equal(t, errcode.CodeInternal, errcode.CodeOf(err))
}

func TestPostUpdate_ReplaceMedia(t *testing.T) {
	f := newPostFixture(t)
	old := f.seedMediaPost(t, "media/old.png")

	var newKey string
	gomock.InOrder(
		f.store.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
				newKey = key
				return "http://cdn/" + key, nil
			}),
		f.store.EXPECT().DeleteObject(gomock.Any(), "media/old.png").Return(nil),
	)

	post, err := f.svc.Update(context.Background(), 1, 10, old.ID, UpdatePostInput{Media: imageFile()})
	require.NoError(t, err)
	require.NotNil(t, post.MediaKey)
	assert.Equal(t, newKey, *post.MediaKey)
}

func TestPostUpdate_ToTextDropsMedia(t *testing.T) {
	f := newPostFixture(t)
	old := f.seedMediaPost(t, "media/old.png")
	f.store.EXPECT().DeleteObject(gomock.Any(), "media/old.png").Return(nil)

	text := model.PostTypeText
	post, err := f.svc.Update(context.Background(), 1, 10, old.ID, UpdatePostInput{Type: &text, Content: strPtr("now text")})
	require.NoError(t, err)
	assert.Equal(t, model.PostTypeText, post.Type)
	assert.Nil(t, post.MediaKey)
	assert.Nil(t, post.MediaURL)
}

func TestPostUpdate_DeleteFailureRollsBack(t *testing.T) {
	f := newPostFixture(t)
	old := f.seedMediaPost(t, "media/old.png")
	f.store.EXPECT().DeleteObject(gomock.Any(), "media/old.png").Return(errors.New("minio down"))

	text := model.PostTypeText
	_, err := f.svc.Update(context.Background(), 1, 10, old.ID, UpdatePostInput{Type: &text, Content: strPtr("x")})
	assert.Equal(t, errcode.CodeInternal, errcode.CodeOf(err))

	var got model.Post
	require.NoError(t, f.db.First(&got, old.ID).Error)
	assert.Equal(t, model.PostTypeImage, got.Type)
	require.NotNil(t, got.MediaKey)
	assert.Equal(t, "media/old.png", *got.MediaKey)
}

func TestPostUpdate_ContentOnlyKeepsMedia(t *testing.T) {
	f := newPostFixture(t)
	old := f.seedMediaPost(t, "media/old.png")

	post, err := f.svc.Update(context.Background(), 1, 10, old.ID, UpdatePostInput{Content: strPtr("caption")})
	require.NoError(t, err)
	require.NotNil(t, post.MediaKey)
	assert.Equal(t, "media/old.png", *post.MediaKey)
	assert.Equal(t, "caption", *post.Content)
}

func TestPostDelete(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	p := f.seedMediaPost(t, "media/a.png")

	f.store.EXPECT().DeleteObject(gomock.Any(), "media/a.png").Return(errors.New("minio down"))
	err := f.svc.Delete(ctx, 1, 10, p.ID)
	assert.Error(t, err)
	assert.Equal(t, int64(1), countRows(t, f.db, &model.Post{}, "id = ?", p.ID))

	f.store.EXPECT().DeleteObject(gomock.Any(), "media/a.png").Return(nil)
	require.NoError(t, f.svc.Delete(ctx, 1, 10, p.ID))
	assert.Zero(t, countRows(t, f.db, &model.Post{}, "id = ?", p.ID))

	err = f.svc.Delete(ctx, 1, 10, p.ID)
	assert.ErrorIs(t, err, errcode.ErrPostNotFound)
}

func TestPostDeleteAll(t *testing.T) {
	f := newPostFixture(t)
	f.seedMediaPost(t, "media/a.png")
	f.seedMediaPost(t, "media/b.png")
	require.NoError(t, f.db.Create(&model.Post{CreatorID: 10, Type: model.PostTypeText, Content: strPtr("t")}).Error)

	f.store.EXPECT().DeleteObject(gomock.Any(), "media/a.png").Return(nil)
	f.store.EXPECT().DeleteObject(gomock.Any(), "media/b.png").Return(nil)

	n, err := f.svc.DeleteAll(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Zero(t, countRows(t, f.db, &model.Post{}, "creator_id = ?", 10))
}

func TestPostRead_Gate(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, 1, 10, CreatePostInput{Type: model.PostTypeText, Content: strPtr("secret")})
	require.NoError(t, err)

	_, err = f.svc.List(ctx, 2, 10)
	assert.ErrorIs(t, err, errcode.ErrNoReadAccess)

	// 帖子是否存在都返回同样的拒绝
	_, err = f.svc.Get(ctx, 2, 10, p.ID)
	assert.ErrorIs(t, err, errcode.ErrNoReadAccess)
	_, err = f.svc.Get(ctx, 2, 10, p.ID+100)
	assert.ErrorIs(t, err, errcode.ErrNoReadAccess)

	_, err = f.svc.Get(ctx, 1, 10, p.ID+100)
	assert.ErrorIs(t, err, errcode.ErrPostNotFound)

	require.NoError(t, f.db.Create(&model.Subscriber{UserID: 2, CreatorID: 10, HasAccess: true}).Error)
	list, err := f.svc.List(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "secret", *list[0].Content)
}

func TestCreatorDelete_Cascades(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	f.seedMediaPost(t, "media/a.png")
	seedUser(t, f.db, 3)
	require.NoError(t, f.db.Create(&model.Subscriber{UserID: 2, CreatorID: 10, HasAccess: true}).Error)
	require.NoError(t, f.db.Create(&model.SubRequest{UserID: 3, CreatorID: 10}).Error)

	creators := NewCreatorService(f.db, f.store)
	err := creators.Delete(ctx, 2, 10)
	assert.ErrorIs(t, err, errcode.ErrNotOwner)

	f.store.EXPECT().DeleteObject(gomock.Any(), "media/a.png").Return(nil)
	require.NoError(t, creators.Delete(ctx, 1, 10))

	assert.Zero(t, countRows(t, f.db, &model.Creator{}, "id = ?", 10))
	assert.Zero(t, countRows(t, f.db, &model.Post{}, "creator_id = ?", 10))
	assert.Zero(t, countRows(t, f.db, &model.Subscriber{}, "creator_id = ?", 10))
	assert.Zero(t, countRows(t, f.db, &model.SubRequest{}, "creator_id = ?", 10))
}
