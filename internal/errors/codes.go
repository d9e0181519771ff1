package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 세션 (SESSION_) ====================
	SessionUnauthorized = "SESSION_UNAUTHORIZED"  // 토큰 없음
	SessionTokenExpired = "SESSION_TOKEN_EXPIRED" // 토큰 만료
	SessionTokenInvalid = "SESSION_TOKEN_INVALID" // 잘못된 토큰
	SessionNotFound     = "SESSION_NOT_FOUND"     // 세션 만료/삭제됨

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목

	// ==================== 카탈로그 (PRODUCT_) ====================
	ProductNotFound = "PRODUCT_NOT_FOUND" // 상품 없음
	CatalogInvalid  = "CATALOG_INVALID"   // 카탈로그 검증 실패

	// ==================== 모달 (MODAL_) ====================
	ModalClosed         = "MODAL_CLOSED"         // 열린 모달 없음
	SelectionIncomplete = "SELECTION_INCOMPLETE" // 박스 선택 미완료

	// ==================== 장바구니 (CART_) ====================
	CartEmpty           = "CART_EMPTY"            // 장바구니 비어있음
	CartInvalidQuantity = "CART_INVALID_QUANTITY" // 잘못된 수량

	// ==================== 주문 전송 (CHECKOUT_) ====================
	CheckoutFieldsRequired = "CHECKOUT_FIELDS_REQUIRED" // 배송 정보 누락

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
	InternalExportFailed  = "INTERNAL_EXPORT_FAILED"  // 엑셀 생성 실패
)
