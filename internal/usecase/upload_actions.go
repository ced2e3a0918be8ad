package usecase

import (
	"context"
	"net/http"

	"umuhinzilink/internal/domain/model"
	"umuhinzilink/internal/notify"
	repo "umuhinzilink/internal/repository"
	"umuhinzilink/internal/service"
	"umuhinzilink/internal/upload"
	"umuhinzilink/internal/upstream"

	"github.com/labstack/gommon/log"
)

// Uploaderは画像を送る先
type Uploader interface {
	Upload(ctx context.Context, name string, contentType string, data []byte, progress upstream.ProgressFunc) upstream.Envelope[service.UploadResult]
}

type UploadOutput struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

// 画像アップロード
type UploadActions struct {
	*runner
	uploader Uploader
	policy   upload.Policy
}

// DI
func NewUploadActions(uploader Uploader, policy upload.Policy, notifier notify.Notifier, audit repo.AuditLogRepository, logger *log.Logger) *UploadActions {
	return &UploadActions{runner: newRunner(notifier, audit, logger), uploader: uploader, policy: policy}
}

func (a *UploadActions) Policy() upload.Policy {
	return a.policy
}

// Uploadは検査・縮小してから送る。検査に落ちたらネットワークには出ない。
// 進み具合は0〜100のトーストで届く。
func (a *UploadActions) Upload(ctx context.Context, p model.Principal, f upload.File, idemKey string) Result[UploadOutput] {
	act := action{
		principal:    p,
		idemKey:      idemKey,
		auditAction:  model.AuditActionUploadFile,
		resourceType: model.AuditResourceFile,
		resourceID:   f.Name,
		successTitle: "Image uploaded",
		failureTitle: "Upload failed",
	}

	contentType, err := a.policy.Validate(f)
	if err != nil {
		title := upload.Message(err)
		a.notifier.Notify(p.UserID, notify.Error(title, err.Error()))
		return failResult[UploadOutput](http.StatusBadRequest, title)
	}
	prepared, err := a.policy.Prepare(f, contentType)
	if err != nil {
		a.logger.Warnf("prepare upload %q: %v", f.Name, err)
		return reject[UploadOutput](a.runner, act, "Could not process image")
	}

	progress := func(pct int) {
		a.notifier.Notify(p.UserID, notify.Progress("Uploading "+f.Name, pct))
	}
	return run(ctx, a.runner, act, func(ctx context.Context) upstream.Envelope[UploadOutput] {
		env := a.uploader.Upload(ctx, prepared.Name, contentType, prepared.Data, progress)
		return upstream.Map(env, func(r service.UploadResult) UploadOutput {
			return UploadOutput{URL: r.URL, ContentType: contentType, Size: len(prepared.Data)}
		})
	}, nil)
}
