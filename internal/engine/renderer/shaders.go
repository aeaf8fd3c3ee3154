package renderer

const meshVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPosition;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;
out vec2 vUV;

void main() {
	gl_Position = uMVP * vec4(aPosition, 1.0);
	vNormal = mat3(uModel) * aNormal;
	vUV = aUV;
}
`

const meshFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec2 vUV;

uniform vec3 uLightDir;
uniform vec3 uColor;
uniform bool uUnlit;
uniform bool uChecker;

out vec4 FragColor;

void main() {
	vec3 base = uColor;
	if (uChecker) {
		vec2 cell = floor(vUV * 8.0);
		base *= mix(0.75, 1.0, mod(cell.x + cell.y, 2.0));
	}
	if (uUnlit) {
		FragColor = vec4(base, 1.0);
		return;
	}

	// Zero normals come from unresolved references; shade them flat.
	float lambert = 1.0;
	if (dot(vNormal, vNormal) > 0.0) {
		lambert = max(dot(normalize(vNormal), -uLightDir), 0.0);
	}
	FragColor = vec4(base * (0.25 + 0.75 * lambert), 1.0);
}
`
