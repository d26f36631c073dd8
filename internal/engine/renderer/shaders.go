package renderer

// Vertex shader shared by all three programs: model coordinates through
// the projection matrix into NDC.
const vertexSrc = `
#version 410 core

in vec2 a_position;
in vec2 a_texCoord;

out vec2 v_texCoord;

uniform mat4 u_matrix;

void main() {
	gl_Position = u_matrix * vec4(a_position, 0.0, 1.0);
	v_texCoord = a_texCoord;
}
`

// Plain fragment shader. Textures are decoded with straight alpha, so
// the shader premultiplies before tinting. Screen color uses the usual
// screen blend with the premultiplied alpha as the cap.
const plainFragSrc = `
#version 410 core

in vec2 v_texCoord;
out vec4 fragColor;

uniform sampler2D u_texture;
uniform float u_opacity;
uniform vec4 u_multiplyColor;
uniform vec4 u_screenColor;

void main() {
	vec4 c = texture(u_texture, v_texCoord);
	c.rgb *= c.a;
	c.rgb *= u_multiplyColor.rgb;
	c.rgb = clamp(c.rgb + u_screenColor.rgb * c.a - c.rgb * u_screenColor.rgb, 0.0, 1.0);
	fragColor = c * u_opacity;
}
`

// Mask fragment shader renders drawable alpha into the mask target.
const maskFragSrc = `
#version 410 core

in vec2 v_texCoord;
out vec4 fragColor;

uniform sampler2D u_texture;
uniform float u_opacity;

void main() {
	float a = texture(u_texture, v_texCoord).a * u_opacity;
	fragColor = vec4(a, a, a, a);
}
`

// Masked fragment shader samples the mask target through screen-space
// coordinates and scales the drawable color by the mask alpha.
const maskedFragSrc = `
#version 410 core

in vec2 v_texCoord;
out vec4 fragColor;

uniform sampler2D u_texture;
uniform sampler2D u_mask;
uniform float u_opacity;
uniform vec4 u_multiplyColor;
uniform vec4 u_screenColor;
uniform vec2 u_viewportSize;

void main() {
	vec4 c = texture(u_texture, v_texCoord);
	c.rgb *= c.a;
	vec2 maskUV = gl_FragCoord.xy / u_viewportSize;
	c *= texture(u_mask, maskUV).a;
	c.rgb *= u_multiplyColor.rgb;
	c.rgb = clamp(c.rgb + u_screenColor.rgb * c.a - c.rgb * u_screenColor.rgb, 0.0, 1.0);
	fragColor = c * u_opacity;
}
`
