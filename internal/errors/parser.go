package errors

import (
	"errors"
	"strings"

	"github.com/ikkim/vitrine-backend/internal/app/repository"
	"github.com/ikkim/vitrine-backend/internal/cart"
	"github.com/ikkim/vitrine-backend/internal/catalog"
	"github.com/ikkim/vitrine-backend/internal/checkout"
	"github.com/ikkim/vitrine-backend/internal/selection"
	"github.com/ikkim/vitrine-backend/internal/storefront"
	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
	Fields  []string
}

// ParseError maps domain errors to an HTTP status, an error code and a
// user-facing message. Unknown errors become INTERNAL_SERVER_ERROR.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: 500, Code: InternalServerError, Message: defaultMessage(context)}
	}

	// 1. 주문 전송 검증
	var fieldsErr *checkout.FieldsRequiredError
	switch {
	case errors.Is(err, checkout.ErrCartEmpty):
		return ErrorInfo{Status: 400, Code: CartEmpty, Message: "Panier vide."}
	case errors.As(err, &fieldsErr):
		return ErrorInfo{
			Status:  400,
			Code:    CheckoutFieldsRequired,
			Message: "Tous les champs sont obligatoires.",
			Fields:  fieldsErr.Missing,
		}
	case errors.Is(err, checkout.ErrFieldsRequired):
		return ErrorInfo{Status: 400, Code: CheckoutFieldsRequired, Message: "Tous les champs sont obligatoires."}
	}

	// 2. 모달/장바구니
	switch {
	case errors.Is(err, selection.ErrIncomplete):
		return ErrorInfo{Status: 400, Code: SelectionIncomplete, Message: "Complétez tous les choix de la box."}
	case errors.Is(err, storefront.ErrModalClosed):
		return ErrorInfo{Status: 409, Code: ModalClosed, Message: "Aucun produit ouvert."}
	case errors.Is(err, cart.ErrInvalidQuantity):
		return ErrorInfo{Status: 400, Code: CartInvalidQuantity, Message: "Quantité invalide."}
	}

	// 3. 카탈로그/세션
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return ErrorInfo{Status: 404, Code: ProductNotFound, Message: "Produit introuvable."}
	case errors.Is(err, catalog.ErrInvalidCatalog):
		return ErrorInfo{Status: 500, Code: CatalogInvalid, Message: "Catalogue invalide."}
	case errors.Is(err, repository.ErrSessionNotFound):
		return ErrorInfo{Status: 401, Code: SessionNotFound, Message: "Session expirée, rechargez la page."}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrorInfo{Status: 404, Code: ProductNotFound, Message: "Produit introuvable."}
	}

	// 4. 네트워크/연결 에러
	errStrLower := strings.ToLower(err.Error())
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Status:  503,
			Code:    InternalExternalAPI,
			Message: "Service indisponible, réessayez plus tard.",
		}
	}

	return ErrorInfo{Status: 500, Code: InternalServerError, Message: defaultMessage(context)}
}

// defaultMessage context에 따른 기본 에러 메시지
func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "export") {
		return "Export du panier impossible, réessayez plus tard."
	}
	if strings.Contains(contextLower, "session") {
		return "Session indisponible, réessayez plus tard."
	}
	return "Erreur serveur, réessayez plus tard."
}
