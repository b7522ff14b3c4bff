package public

import (
	handlershared "github.com/dujiao-next/promo/internal/http/handlers/shared"
	"github.com/dujiao-next/promo/internal/http/response"
	"github.com/dujiao-next/promo/internal/service"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var checkoutCommonErrorRules = []handlershared.MappedError{
	{Target: service.ErrCouponCodeRequired, Code: response.CodeBadRequest, Key: "error.coupon_code_required"},
	{Target: service.ErrCouponNotFound, Code: response.CodeNotFound, Key: "error.coupon_not_found"},
	{Target: service.ErrCheckoutInvalid, Code: response.CodeBadRequest, Key: "error.checkout_invalid"},
}

var redemptionExtraErrorRules = []handlershared.MappedError{
	{Target: service.ErrRedemptionInvalid, Code: response.CodeBadRequest, Key: "error.redemption_invalid"},
	{Target: service.ErrRedemptionFailed, Code: response.CodeInternal, Key: "error.redemption_failed"},
}

func respondEvaluateError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, checkoutCommonErrorRules, response.CodeInternal, "error.coupon_evaluate_failed")
}

func respondRedemptionError(c *gin.Context, err error) {
	handlershared.RespondWithMappedError(c, err, handlershared.ConcatMappedErrors(checkoutCommonErrorRules, redemptionExtraErrorRules), response.CodeInternal, "error.redemption_failed")
}
