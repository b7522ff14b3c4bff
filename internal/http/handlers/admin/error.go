package admin

import (
	handlershared "github.com/dujiao-next/promo/internal/http/handlers/shared"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var couponLookupErrorRules = []handlershared.MappedError{
	{Target: service.ErrCouponInvalid, Code: response.CodeBadRequest, Key: "error.coupon_id_invalid"},
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
}

var couponWriteErrorRules = []handlershared.MappedError{
	{Target: service.ErrCouponCodeRequired, Code: response.CodeBadRequest, Key: "error.coupon_code_required"},
	{Target: service.ErrCouponCodeExists, Code: response.CodeConflict, Key: "error.coupon_code_exists"},
	{Target: service.ErrCouponTypeInvalid, Code: response.CodeBadRequest, Key: "error.coupon_type_invalid"},
	{Target: service.ErrCouponValueInvalid, Code: response.CodeBadRequest, Key: "error.coupon_value_invalid"},
	{Target: service.ErrCouponWindowInvalid, Code: response.CodeBadRequest, Key: "error.coupon_window_invalid"},
}

var couponQuickTestErrorRules = []handlershared.MappedError{
	{Target: service.ErrCheckoutInvalid, Code: response.CodeBadRequest, Key: "error.checkout_invalid"},
}

func respondCouponFetchError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, couponLookupErrorRules, response.CodeInternal, "error.coupon_fetch_failed")
}

func respondCouponSaveError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(couponLookupErrorRules, couponWriteErrorRules), response.CodeInternal, "error.coupon_save_failed")
}

func respondCouponQuickTestError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(couponLookupErrorRules, couponWriteErrorRules, couponQuickTestErrorRules), response.CodeInternal, "error.coupon_evaluate_failed")
}
